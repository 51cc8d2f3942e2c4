package locator

func revealCommand(path string) (command, error) {
	return command{argv: []string{"explorer", "/select," + path}, ignoreExitStatus: true}, nil
}

func openCommand(path string) (command, error) {
	return command{argv: []string{"cmd", "/C", "start", "", path}}, nil
}
