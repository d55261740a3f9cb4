package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/mogaika/morpheme_converter/config"
	"github.com/mogaika/morpheme_converter/convert"
	"github.com/mogaika/morpheme_converter/utils"
)

func main() {
	var legacy, noExpand, gltf, verbose, dump bool
	var encoding, mirror, configPath string
	flag.BoolVar(&legacy, "legacy", false, "Keep file coordinates, scale and bone names, no frame expansion")
	flag.BoolVar(&noExpand, "noexpand", false, "Do not duplicate frames up to 30 fps")
	flag.BoolVar(&gltf, "gltf", false, "Also write bind pose skeleton as .glb")
	flag.StringVar(&encoding, "encoding", "", "Bone name charmap: "+strings.Join(config.ListEncodings(), ", "))
	flag.StringVar(&mirror, "mirror", "", "Path to yaml bone mirror table")
	flag.StringVar(&configPath, "config", "", "Path to yaml config")
	flag.BoolVar(&verbose, "v", false, "Trace segments and channel groups")
	flag.BoolVar(&dump, "dump", false, "Dump parsed headers and skeleton")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] file.MorphemeAnimSequence...\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	o := config.Default()
	if configPath != "" {
		var err error
		if o, err = config.LoadFile(configPath); err != nil {
			log.Fatal(err)
		}
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "legacy":
			o.Legacy = legacy
		case "noexpand":
			o.NoExpand = noExpand
		case "gltf":
			o.GLTF = gltf
		case "encoding":
			o.Encoding = encoding
		case "mirror":
			o.MirrorTable = mirror
		case "v":
			o.Verbose = verbose
		case "dump":
			o.Dump = dump
		}
	})
	if err := o.Apply(); err != nil {
		log.Fatal(err)
	}

	var l *utils.Logger
	if o.Verbose {
		l = utils.NewLogger(os.Stderr)
	}

	failed := 0
	for _, path := range flag.Args() {
		log.Printf("Converting %s", path)
		out, err := convert.ConvertFile(path, o, l)
		if err != nil {
			log.Printf("Error: %v", err)
			failed++
			continue
		}
		log.Printf("Wrote %s", out)
	}
	if failed != 0 {
		log.Printf("%d of %d files failed", failed, flag.NArg())
		os.Exit(1)
	}
}
