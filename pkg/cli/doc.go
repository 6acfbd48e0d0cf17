/*
Package cli provides command-line utilities shared by the emotion-api
command.

Error Types:

Commands wrap failures in typed errors so the root command can print a
consistent message:

	if err := config.LoadConfig(path); err != nil {
		return cli.NewConfigError("", err.Error())
	}

Signal Handling:

For graceful shutdown on SIGINT/SIGTERM:

	sigChan := cli.WaitForShutdown()
	<-sigChan
	// drain in-flight work, then exit
*/
package cli
