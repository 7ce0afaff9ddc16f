// Package command holds one file per labops subcommand. Commands only parse
// flags and wire collaborators through the factory package; the real work
// lives in the engine packages.
package command

import (
	"bufio"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/hoveland/labops/factory"
	"github.com/hoveland/labops/orchestrator"

	"github.com/mgutz/ansi"
	"github.com/urfave/cli"
)

// trapSigint turns Ctrl-C into a confirmation prompt instead of an abrupt
// exit. Log output is paused while the question is on screen.
func trapSigint(backup bool) {
	sigintChan := make(chan os.Signal, 1)
	signal.Notify(sigintChan, os.Interrupt)

	var sigintQuestion, stdInErrorMessage, cleanupAdvisedNotice string
	if backup {
		sigintQuestion = backupSigintQuestion
		stdInErrorMessage = backupStdinErrorMessage
		cleanupAdvisedNotice = backupCleanupAdvisedNotice
	} else {
		sigintQuestion = rotateSigintQuestion
		stdInErrorMessage = rotateStdinErrorMessage
		cleanupAdvisedNotice = rotateCleanupAdvisedNotice
	}

	go func() {
		for range sigintChan {
			stdinReader := bufio.NewReader(os.Stdin)
			factory.ApplicationLoggerStdout.Pause()
			fmt.Fprintln(os.Stdout, "\n"+sigintQuestion)
			input, err := stdinReader.ReadString('\n')
			if err != nil {
				fmt.Println("\n" + stdInErrorMessage)
			} else if strings.ToLower(strings.TrimSpace(input)) == "yes" {
				fmt.Println(cleanupAdvisedNotice)
				os.Exit(1)
			}
			factory.ApplicationLoggerStdout.Resume()
		}
	}()
}

func processError(err orchestrator.Error) error {
	errorCode, errorMessage, errorWithStackTrace := orchestrator.ProcessError(err)
	if writeErr := writeStackTrace(errorWithStackTrace); writeErr != nil {
		return cli.NewExitError(errorMessage+"\n"+writeErr.Error(), errorCode)
	}

	return cli.NewExitError(errorMessage, errorCode)
}

func writeStackTrace(errorWithStackTrace string) error {
	if errorWithStackTrace != "" {
		name := fmt.Sprintf("labops-%s.err.log", time.Now().UTC().Format(time.RFC3339))
		return os.WriteFile(name, []byte(errorWithStackTrace), 0644)
	}
	return nil
}

func redCliError(err error) *cli.ExitError {
	return cli.NewExitError(ansi.Color(err.Error(), "red"), 1)
}
