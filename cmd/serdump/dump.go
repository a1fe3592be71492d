package main

import (
	"flag"
	"io"
	"os"

	"github.com/pkg/errors"

	"serdump/internal/config"
	"serdump/internal/output"
	"serdump/internal/trace"
)

func cmdDump(args []string) error {
	fs := flag.NewFlagSet("dump", flag.ExitOnError)
	c := addCommon(fs)
	offsets := fs.Bool("offsets", false, "prefix each line with its byte offset")
	format := fs.String("format", "", "text, json or events (default from config)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	s, err := c.open()
	if err != nil {
		return err
	}
	f := s.cfg.Format
	if *format != "" {
		f = *format
	}

	switch f {
	case config.FormatText:
		return writeText(s, os.Stdout, *offsets)
	case config.FormatJSON:
		return writeContent(s, os.Stdout)
	case config.FormatEvents:
		return writeEvents(s, os.Stdout)
	}
	return errors.Errorf("unknown format %q", f)
}

func cmdJSON(args []string) error {
	fs := flag.NewFlagSet("json", flag.ExitOnError)
	c := addCommon(fs)
	out := fs.String("out", "", "output file (default stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	s, err := c.open()
	if err != nil {
		return err
	}
	var derr error
	if err := output.WriteFile(*out, func(w io.Writer) error {
		derr = writeContent(s, w)
		return nil
	}); err != nil {
		return err
	}
	return derr
}

func cmdEvents(args []string) error {
	fs := flag.NewFlagSet("events", flag.ExitOnError)
	c := addCommon(fs)
	out := fs.String("out", "", "output file (default stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	s, err := c.open()
	if err != nil {
		return err
	}
	var derr error
	if err := output.WriteFile(*out, func(w io.Writer) error {
		derr = writeEvents(s, w)
		return nil
	}); err != nil {
		return err
	}
	return derr
}

func cmdHandles(args []string) error {
	fs := flag.NewFlagSet("handles", flag.ExitOnError)
	c := addCommon(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	s, err := c.open()
	if err != nil {
		return err
	}
	res, derr := s.decode(nil)
	if err := output.WriteHandles(os.Stdout, res.Handles); err != nil {
		return err
	}
	if derr != nil {
		return stopped(res, derr)
	}
	return nil
}

// writeText streams the indented trace; whatever was decoded before an
// error is already on w when the error is returned.
func writeText(s *session, w io.Writer, offsets bool) error {
	tw := trace.NewWriter(w, offsets)
	res, derr := s.decode(tw)
	if err := tw.Flush(); err != nil {
		return errors.Wrap(err, "write trace")
	}
	if derr != nil {
		return stopped(res, derr)
	}
	return nil
}

func writeContent(s *session, w io.Writer) error {
	res, derr := s.decode(nil)
	if err := output.WriteContentJSON(w, res, derr); err != nil {
		return err
	}
	if derr != nil {
		return stopped(res, derr)
	}
	return nil
}

func writeEvents(s *session, w io.Writer) error {
	jw := trace.NewJSONLWriter(w)
	res, derr := s.decode(jw)
	if err := jw.Flush(); err != nil {
		return errors.Wrap(err, "write events")
	}
	if derr != nil {
		return stopped(res, derr)
	}
	return nil
}
