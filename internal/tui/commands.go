package tui

import "strings"

type commandKind int

const (
	cmdSubmit commandKind = iota
	cmdAdvance
	cmdReset
	cmdRestart
	cmdExport
	cmdHelp
	cmdQuit
	cmdUnknown
)

type command struct {
	kind commandKind
	arg  string
	text string
}

// parseCommand classifies one line of input. Lines that are not a known
// slash command or restart keyword go to the orchestrator verbatim.
func parseCommand(line string) command {
	trimmed := strings.TrimSpace(line)
	switch trimmed {
	case "처음부터", "restart":
		return command{kind: cmdRestart}
	}
	if !strings.HasPrefix(trimmed, "/") {
		return command{kind: cmdSubmit, text: line}
	}

	name, arg, _ := strings.Cut(trimmed[1:], " ")
	arg = strings.TrimSpace(arg)
	switch strings.ToLower(name) {
	case "advance", "next":
		return command{kind: cmdAdvance}
	case "reset":
		return command{kind: cmdReset}
	case "restart":
		return command{kind: cmdRestart}
	case "export":
		return command{kind: cmdExport, arg: arg}
	case "help":
		return command{kind: cmdHelp}
	case "quit", "exit":
		return command{kind: cmdQuit}
	default:
		return command{kind: cmdUnknown, arg: name}
	}
}

const helpText = `명령어
  /advance          지금 단계를 마치고 결과물을 만듭니다
  /reset            1회차 사회화부터 다시 시작합니다
  /restart, 처음부터  다음 회차를 시작합니다
  /export [형식|경로]  리포트를 저장합니다 (md, json, yaml, toml)
  /quit             종료합니다`
