package main

import (
	"flag"
	"io"
	"path/filepath"

	"github.com/pkg/errors"

	"serdump/internal/output"
	"serdump/internal/render"
)

func cmdReport(args []string) error {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	c := addCommon(fs)
	out := fs.String("out", "", "output HTML file")
	title := fs.String("title", "", "page title (default input name)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *out == "" {
		return errors.New("--out is required")
	}
	s, err := c.open()
	if err != nil {
		return err
	}

	// The report shows the failure itself, so a decode error does not fail
	// the command.
	res, derr := s.decode(nil)
	if derr != nil {
		s.log.Warn().Err(derr).Msg("decode stopped early")
	}
	t := *title
	if t == "" {
		t = filepath.Base(s.src)
	}
	err = output.WriteFile(*out, func(w io.Writer) error {
		render.WriteReportHTML(w, render.Report{
			Title:  t,
			Source: s.src,
			Size:   len(s.data),
			Result: res,
			Err:    derr,
		}, render.NASA)
		return nil
	})
	if err != nil {
		return err
	}
	s.log.Info().Str("out", *out).Int("handles", len(res.Handles)).Msg("report written")
	return nil
}
