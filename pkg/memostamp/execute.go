package memostamp

import "github.com/osvaldoandrade/memostamp/internal/cli"

// Execute runs the memostamp CLI entrypoint.
func Execute() int {
	return cli.Execute()
}
