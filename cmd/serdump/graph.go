package main

import (
	"flag"
	"io"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"serdump/internal/output"
	"serdump/internal/refgraph"
	"serdump/internal/render"
)

func cmdGraph(args []string) error {
	fs := flag.NewFlagSet("graph", flag.ExitOnError)
	c := addCommon(fs)
	out := fs.String("out", "", "output file (default stdout)")
	title := fs.String("title", "", "graph title (default input name)")
	themed := fs.Bool("themed", false, "themed DOT with edge kinds")
	asJSON := fs.Bool("json", false, "write the graph as JSON instead of DOT")
	maxNodes := fs.Int("max-nodes", 0, "limit themed graph nodes (0 = all)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *themed && *asJSON {
		return errors.New("--themed and --json are exclusive")
	}
	s, err := c.open()
	if err != nil {
		return err
	}

	// A partial graph is still worth writing.
	res, derr := s.decode(nil)
	g := refgraph.Build(res)
	s.log.Debug().Int("nodes", len(g.Nodes)).Int("edges", len(g.Edges)).Msg("reference graph")

	t := *title
	if t == "" {
		t = strings.TrimSuffix(filepath.Base(s.src), filepath.Ext(s.src))
	}
	err = output.WriteFile(*out, func(w io.Writer) error {
		switch {
		case *asJSON:
			return output.WriteGraphJSON(w, g)
		case *themed:
			_, err := io.WriteString(w, render.GraphDOT(g, t, render.NASA, *maxNodes))
			return err
		}
		_, err := io.WriteString(w, refgraph.DOT(g, t))
		return err
	})
	if err != nil {
		return err
	}
	if derr != nil {
		return stopped(res, derr)
	}
	return nil
}
