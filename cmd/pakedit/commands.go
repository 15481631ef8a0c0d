package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/meigma/pak"
	"github.com/meigma/pak/property"
	"github.com/meigma/pak/uasset"
)

func openPak(path string, e *env) (*pak.Container, error) {
	return pak.Open(path, pak.WithLogger(e.logger))
}

func runList(_ context.Context, e *env, args []string) error {
	c, err := openPak(args[0], e)
	if err != nil {
		return err
	}
	defer c.Close()

	methods := c.Methods()
	tw := tabwriter.NewWriter(e.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "mount\t%s\n", c.MountPoint())
	fmt.Fprintln(tw, "PATH\tSIZE\tRAW\tMETHOD\tCHUNKS")
	for entry := range c.Entries() {
		method := "none"
		if entry.Compressed() && int(entry.Method) <= len(methods) {
			method = string(methods[entry.Method-1])
		} else if entry.Compressed() {
			method = fmt.Sprintf("#%d", entry.Method)
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\t%d\n", entry.Path, entry.Size, entry.RawSize, method, len(entry.Chunks))
	}
	return tw.Flush()
}

func runExtract(_ context.Context, e *env, args []string) error {
	c, err := openPak(args[0], e)
	if err != nil {
		return err
	}
	defer c.Close()

	data, err := c.ExtractFile(args[1])
	if err != nil {
		return err
	}
	if e.output == "" {
		_, err = e.stdout.Write(data)
		return err
	}
	return os.WriteFile(e.output, data, 0o644)
}

func runDump(_ context.Context, e *env, args []string) error {
	c, err := openPak(args[0], e)
	if err != nil {
		return err
	}
	defer c.Close()

	a, err := uasset.Load(c, args[1], uasset.WithLogger(e.logger))
	if err != nil {
		return err
	}
	node, err := tableNode(a.Table())
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(e.stdout)
	enc.SetIndent(2)
	if err := enc.Encode(node); err != nil {
		return err
	}
	return enc.Close()
}

func runSet(ctx context.Context, e *env, args []string) error {
	if e.output == "" {
		return errors.New("set requires -o <patch.pak>")
	}
	c, err := openPak(args[0], e)
	if err != nil {
		return err
	}
	defer c.Close()

	a, err := uasset.Load(c, args[1], uasset.WithLogger(e.logger))
	if err != nil {
		return err
	}
	if err := setField(a.Table(), args[2], args[3]); err != nil {
		return err
	}
	if err := a.Update(); err != nil {
		return err
	}
	res, err := c.BuildFile(ctx, e.output)
	if err != nil {
		return err
	}
	e.logger.Info("wrote patch container",
		"path", e.output,
		"entries", res.Entries,
		"size", res.Size,
		"digest", res.Digest.String())
	return nil
}

// setField parses value according to the kind of the named top-level field.
func setField(t *property.Table, name, value string) error {
	p, ok := t.Lookup(name)
	if !ok {
		return fmt.Errorf("%w: %q", property.ErrNoField, name)
	}
	switch p := p.(type) {
	case *property.Int:
		v, err := strconv.ParseInt(value, 0, 64)
		if err != nil {
			return err
		}
		return p.Set(v)
	case *property.UInt:
		v, err := strconv.ParseUint(value, 0, 64)
		if err != nil {
			return err
		}
		return p.Set(v)
	case *property.Float:
		v, err := strconv.ParseFloat(value, 32)
		if err != nil {
			return err
		}
		p.Value = float32(v)
	case *property.Bool:
		v, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		p.Value = v
	default:
		return fmt.Errorf("%w: cannot set %s field %q from the command line",
			property.ErrTypeMismatch, p.Kind(), name)
	}
	return nil
}
