package main

import (
	"flag"
	"log"

	"github.com/mogaika/morpheme_converter/config"
	"github.com/mogaika/morpheme_converter/vfs"
	"github.com/mogaika/morpheme_converter/web"
)

func main() {
	var addr, dir, configPath string
	var legacy bool
	flag.StringVar(&addr, "i", ":8000", "Address of server")
	flag.StringVar(&dir, "dir", "", "Path to folder with .MorphemeAnimSet files and sequence folders")
	flag.StringVar(&configPath, "config", "", "Path to yaml config")
	flag.BoolVar(&legacy, "legacy", false, "Keep file coordinates, scale and bone names")
	flag.Parse()

	if dir == "" {
		flag.PrintDefaults()
		return
	}

	o := config.Default()
	if configPath != "" {
		var err error
		if o, err = config.LoadFile(configPath); err != nil {
			log.Fatal(err)
		}
	}
	if legacy {
		o.Legacy = true
	}
	if err := o.Apply(); err != nil {
		log.Fatal(err)
	}

	if err := web.StartServer(addr, vfs.NewDirectoryDriver(dir), o); err != nil {
		log.Fatal(err)
	}
}
