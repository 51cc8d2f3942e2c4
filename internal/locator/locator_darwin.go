package locator

func revealCommand(path string) (command, error) {
	return command{argv: []string{"open", "-R", path}}, nil
}

func openCommand(path string) (command, error) {
	return command{argv: []string{"open", path}}, nil
}
