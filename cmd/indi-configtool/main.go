// Command indi-configtool inspects or purges a device's persisted
// property config file, the XML format pkg/indiconfig reads and
// writes.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	_ "github.com/jimmicro/version"

	"github.com/goindi/indidriver/pkg/indiconfig"
)

func main() {
	var (
		device = flag.String("device", "", "device name whose config file to inspect")
		path   = flag.String("path", "", "explicit config file path (overrides INDICONFIG/home lookup)")
		purge  = flag.Bool("purge", false, "remove the device's config file instead of printing its path")
	)
	flag.Parse()

	if *device == "" {
		fmt.Fprintln(os.Stderr, "usage: indi-configtool -device <name> [-path <file>] [-purge]")
		os.Exit(2)
	}

	store, err := indiconfig.Open(*device, *path)
	if err != nil {
		log.Fatalf("open config store for %q: %v", *device, err)
	}

	if *purge {
		if err := store.Purge(); err != nil {
			log.Fatalf("purge config for %q: %v", *device, err)
		}
		fmt.Printf("removed %s\n", store.Path())
		return
	}

	fmt.Println(store.Path())
}
