// elevate: a workflow tool for lifting aligned sequencing reads
// from one reference genome to another.
// Copyright (c) 2023-2026 biolift bv.

// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version, and Additional Terms
// (see below).

// This program is distributed in the hope that it will be useful, but
// WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Affero General Public License for more details.

// You should have received a copy of the GNU Affero General Public
// License and Additional Terms along with this program. If not, see
// <https://github.com/biolift/elevate/blob/master/LICENSE.txt>.

// elevate is a workflow tool that lifts aligned sequencing reads from
// one reference genome to another, re-aligning the reads that do not
// lift over cleanly.
//
// Please see https://github.com/biolift/elevate for a documentation of
// the tool.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/biolift/elevate/cmd"
)

func printHelp() {
	fmt.Fprintln(os.Stderr, "Available commands: run")
	fmt.Fprint(os.Stderr, "\n", cmd.RunHelp)
}

func main() {
	fmt.Fprintln(os.Stderr, cmd.ProgramMessage)
	if len(os.Args) < 2 {
		log.Println("Incorrect number of parameters.")
		fmt.Fprintln(os.Stderr, cmd.HelpMessage)
		printHelp()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "run":
		err = cmd.Run()
	case "help", "-help", "--help", "-h", "--h":
		printHelp()
	default:
		log.Println("Unknown command: ", os.Args[1])
		printHelp()
		os.Exit(1)
	}
	if err != nil {
		log.Fatal(err)
	}

}
