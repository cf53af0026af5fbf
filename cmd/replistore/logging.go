package main

import (
	"flag"
	"strconv"
)

// initLogging points glog at stderr and applies the requested
// verbosity. glog registers its flags on the standard flag set, which
// cobra never parses, so the values are set directly.
func initLogging(verbosity int) {
	if !flag.Parsed() {
		_ = flag.CommandLine.Parse([]string{})
	}
	if f := flag.Lookup("logtostderr"); f != nil {
		_ = f.Value.Set("true")
	}
	if verbosity > 0 {
		if f := flag.Lookup("v"); f != nil {
			_ = f.Value.Set(strconv.Itoa(verbosity))
		}
	}
}
