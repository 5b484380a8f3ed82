// Command grexdemo is a small grep-like driver over the grex engine: it
// compiles one pattern and scans stdin or the named files for lines that
// match, printing the matched files/lines the way grep does.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"

	"github.com/coregx/grex"
)

func main() {
	ignoreCase := flag.Bool("i", false, "case-insensitive match")
	invert := flag.Bool("v", false, "print lines that do not match")
	count := flag.Bool("c", false, "print only a count of matching lines")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [-i] [-v] [-c] pattern [file ...]\n", os.Args[0])
	}
	flag.Parse()

	args := flag.Args()
	if len(args) < 1 {
		flag.Usage()
		os.Exit(2)
	}
	pattern := args[0]
	if *ignoreCase {
		pattern = "(?i)" + pattern
	}
	files := args[1:]

	autom := grex.Compile(pattern)
	if autom.CompileError != nil {
		fmt.Fprintf(os.Stderr, "grexdemo: %v\n", autom.CompileError)
		os.Exit(2)
	}

	foundAny := false
	multi := len(files) > 1
	if len(files) == 0 {
		if scanAndPrint("stdin", os.Stdin, autom, *invert, *count, false) {
			foundAny = true
		}
	} else {
		for _, name := range files {
			f, err := os.Open(name)
			if err != nil {
				fmt.Fprintf(os.Stderr, "grexdemo: %v\n", err)
				os.Exit(2)
			}
			if scanAndPrint(name, f, autom, *invert, *count, multi) {
				foundAny = true
			}
			f.Close()
		}
	}

	if foundAny {
		os.Exit(0)
	}
	os.Exit(1)
}

// scanAndPrint reads f line by line, testing each against autom, and
// reports whether any line matched (xor'd with invert).
func scanAndPrint(label string, f *os.File, autom *grex.Automaton, invert, countOnly, withLabel bool) bool {
	scanner := bufio.NewScanner(f)
	matched := false
	n := 0
	for scanner.Scan() {
		line := scanner.Text()
		ok := len(autom.MatchAll([]rune(line))) > 0
		if ok != invert {
			matched = true
			n++
			if !countOnly {
				if withLabel {
					fmt.Printf("%s:%s\n", label, line)
				} else {
					fmt.Println(line)
				}
			}
		}
	}
	if countOnly {
		if withLabel {
			fmt.Printf("%s:%d\n", label, n)
		} else {
			fmt.Println(n)
		}
	}
	return matched
}
