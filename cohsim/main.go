// Command cohsim replays a script of cache accesses on a simulated MESI cache
// hierarchy and reports the state and timing of every access.
package main

import "github.com/sarchlab/cohsim/cohsim/cmd"

func main() {
	cmd.Execute()
}
