package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/list"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"

	"birdsort/internal/classify"
	"birdsort/internal/taxontree"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

const (
	statusLabelWidth = 20
	statusIndent     = "  "
)

func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	statusText := fmt.Sprintf("[%s]", statusKindLabel(kind))
	if message != "" {
		statusText += " " + message
	}
	base := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, label+":", statusText)
	if colorize {
		if color := statusKindColor(kind); color != "" {
			return color + base + ansiReset
		}
	}
	return base
}

func statusKindLabel(kind statusKind) string {
	switch kind {
	case statusOK:
		return "OK"
	case statusWarn:
		return "WARN"
	case statusError:
		return "ERROR"
	default:
		return "INFO"
	}
}

func statusKindColor(kind statusKind) string {
	switch kind {
	case statusOK:
		return ansiGreen
	case statusWarn:
		return ansiYellow
	case statusError:
		return ansiRed
	case statusInfo:
		return ansiBlue
	default:
		return ""
	}
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

type treeOptions struct {
	photos   bool
	colorize bool
}

// renderTree draws the taxonomy as an indented list. Photo leaves are listed
// only when opts.photos is set.
func renderTree(tree taxontree.Tree, opts treeOptions) string {
	if len(tree.Orders) == 0 {
		return "No matched photos"
	}

	lw := list.NewWriter()
	if opts.colorize {
		lw.SetStyle(list.StyleConnectedRounded)
	} else {
		lw.SetStyle(list.StyleDefault)
	}

	depth := 0
	tree.Walk(func(n taxontree.Node) bool {
		level := int(n.Level)
		for depth < level {
			lw.Indent()
			depth++
		}
		for depth > level {
			lw.UnIndent()
			depth--
		}
		lw.AppendItem(nodeLabel(n, opts.colorize))
		return n.Level != taxontree.LevelSpecies || opts.photos
	})
	return lw.Render()
}

func nodeLabel(n taxontree.Node, colorize bool) string {
	count := fmt.Sprintf("(%d)", n.Count)
	switch n.Level {
	case taxontree.LevelOrder:
		name := n.Name
		if colorize {
			name = text.Bold.Sprint(name)
		}
		return name + " " + count
	case taxontree.LevelGenus:
		name := n.Name
		if colorize {
			name = text.Italic.Sprint(name)
		}
		return name + " " + count
	case taxontree.LevelSpecies:
		name := n.Name
		if colorize {
			name = text.Colors{text.Italic, text.FgCyan}.Sprint(name)
		}
		if strings.TrimSpace(n.Localized) != "" {
			name += " " + n.Localized
		}
		return name + " " + count
	case taxontree.LevelPhoto:
		if colorize {
			return text.FgHiBlack.Sprint(n.Name)
		}
		return n.Name
	default:
		return n.Name + " " + count
	}
}

// renderScanSummary tabulates the scan statistics.
func renderScanSummary(resp *classify.Response, rounded bool) string {
	species := fmt.Sprintf("%d / %d", resp.Tree.SpeciesCount(), resp.TotalSpeciesCount)
	rows := [][]string{
		{"Photos scanned", strconv.Itoa(resp.Stats.Total)},
		{"Matched", strconv.Itoa(resp.Stats.Matched)},
		{"Unmatched", strconv.Itoa(resp.Stats.Unmatched)},
		{"Species photographed", species},
	}
	return renderTable([]string{"Metric", "Value"}, rows, []columnAlignment{alignLeft, alignRight}, rounded)
}
