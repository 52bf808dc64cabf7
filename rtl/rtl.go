// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package rtl emits a memory macro Design as a set of Verilog sources, along
// with a self-checking testbench and the build files needed to simulate it
// with Icarus Verilog.
//
// The emitted file set is always the same. Disabled features (ECC, write
// failure or read disturb injection) are emitted as pass-through modules with
// the same ports, so the top-level netlist never changes shape.
package rtl

import (
	"bytes"
	"embed"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"

	"github.com/db47h/secmem"
	"github.com/pkg/errors"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.New("rtl").Funcs(template.FuncMap{
	"dec":   func(v int) int { return v - 1 },
	"zeros": func(n int) string { return strings.Repeat("0", n) },
}).ParseFS(templateFS, "templates/*.tmpl"))

// Files lists the names of the emitted files, in emission order.
var Files = []string{
	"Makefile",
	"run.f",
	"epl_Control_Circuit_sub.v",
	"epl_Ffbit_n_sub.v",
	"epl_Row_Selection_sub.v",
	"epl_FiWrFail_sub.v",
	"epl_FiRdDist_sub.v",
	"EPLFFRAM02_spec.vh",
	"epl_Row_Decode_sub.v",
	"epl_Column_Decode_sub.v",
	"epl_Column_Access_sub.v",
	"epl_Read_Mux_sub.v",
	"epl_Memory_Array_sub.v",
	"epl_FFRAM02_top_fi.v",
	"epl_testbench_rtl_fi.v",
	"epl_ecc_encoder.v",
	"epl_ecc_decoder.v",
}

// templateName returns the template used to render file name for d.
func templateName(d *secmem.Design, name string) string {
	bypass := false
	switch name {
	case "epl_ecc_encoder.v", "epl_ecc_decoder.v":
		bypass = !d.Config.ECC
	case "epl_FiWrFail_sub.v":
		bypass = !d.WriteFailure.Enabled
	case "epl_FiRdDist_sub.v":
		bypass = !d.ReadDisturb.Enabled
	}
	if bypass {
		return strings.TrimSuffix(name, ".v") + ".bypass.tmpl"
	}
	return name + ".tmpl"
}

// Render returns the contents of the named file for design d.
func Render(d *secmem.Design, name string) ([]byte, error) {
	return render(d, newView(d), name)
}

func render(d *secmem.Design, v *view, name string) ([]byte, error) {
	t := templates.Lookup(templateName(d, name))
	if t == nil {
		return nil, errors.Errorf("unknown file %s", name)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, v); err != nil {
		return nil, errors.Wrapf(err, "rendering %s", name)
	}
	return buf.Bytes(), nil
}

// A Sink receives emitted files.
type Sink interface {
	WriteFile(name string, data []byte) error
}

// Emit renders every file in Files for design d and writes them to s. It stops
// at the first error.
func Emit(d *secmem.Design, s Sink) error {
	v := newView(d)
	for _, name := range Files {
		data, err := render(d, v, name)
		if err != nil {
			return err
		}
		if err = s.WriteFile(name, data); err != nil {
			return errors.Wrapf(err, "writing %s", name)
		}
	}
	return nil
}

type dirSink string

func (dir dirSink) WriteFile(name string, data []byte) error {
	return os.WriteFile(filepath.Join(string(dir), name), data, 0644)
}

// DirSink returns a Sink writing files into directory dir, creating it if
// needed. Existing files are overwritten.
func DirSink(dir string) (Sink, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrap(err, "creating output directory")
	}
	return dirSink(dir), nil
}

// OutputDir returns the directory files are emitted to: root, or its subfolder
// sub if sub is not blank.
func OutputDir(root, sub string) string {
	sub = strings.TrimSpace(sub)
	if sub == "" {
		return filepath.Clean(root)
	}
	return filepath.Join(root, sub)
}

// MemSink is a Sink keeping files in memory.
type MemSink map[string][]byte

// WriteFile implements Sink.
func (m MemSink) WriteFile(name string, data []byte) error {
	m[name] = append([]byte(nil), data...)
	return nil
}

// Names returns the names of the files in m, sorted.
func (m MemSink) Names() []string {
	names := make([]string, 0, len(m))
	for n := range m {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
