package main

import "github.com/mwaldheim/toggl-jira-report/cmd"

func main() {
	cmd.Execute()
}
