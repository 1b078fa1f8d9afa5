package main

func (cli *commandLine) migrate(args []string) error {
	return runMigrationsFunc(args[0], cli.db, args[1:]...)
}
