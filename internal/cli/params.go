// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/db47h/secmem"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
)

// EnvPrefix prefixes the environment variables overriding flag defaults. Flag
// word-width is read from SECMEM_WORD_WIDTH.
const EnvPrefix = "SECMEM_"

// paramFlags binds generator parameters to command line flags.
type paramFlags struct {
	p           secmem.Params
	envFile     string
	interactive bool
}

func (f *paramFlags) register(fs *pflag.FlagSet) {
	f.p = secmem.DefaultParams()
	p := &f.p
	fs.IntVar(&p.Words, "word", p.Words, "number of words (power of two)")
	fs.IntVar(&p.WordWidth, "word-width", p.WordWidth, "data bits per word (1..1024)")
	fs.IntVar(&p.Mux, "mux", p.Mux, "column multiplexing factor (power of two)")
	fs.IntVar(&p.FaultWidth, "fault", p.FaultWidth, "fault command width")
	fs.StringVar(&p.WFWordMask, "wf-word-mask", p.WFWordMask, "write failure word mask (0x, 0b or decimal)")
	fs.StringVar(&p.RDWordMask, "rd-word-mask", p.RDWordMask, "read disturb word mask (0x, 0b or decimal)")
	fs.StringVar(&p.WFBitMask, "wf-bit-mask", p.WFBitMask, "write failure codeword bit mask (0x, 0b or decimal)")
	fs.StringVar(&p.RDBitMask, "rd-bit-mask", p.RDBitMask, "read disturb codeword bit mask (0x, 0b or decimal)")
	fs.BoolVar(&p.WFForceZero, "wf-force-zero", p.WFForceZero, "write failures store an all zero codeword")
	fs.BoolVar(&p.ECC, "ecc", p.ECC, "enable Hamming SEC")
	fs.BoolVar(&p.WriteFailure, "wf", p.WriteFailure, "enable write failure injection")
	fs.BoolVar(&p.ReadDisturb, "rd", p.ReadDisturb, "enable read disturb injection")
	fs.StringVarP(&p.OutputDir, "out", "o", p.OutputDir, "output root directory")
	fs.StringVar(&p.Subfolder, "subfolder", p.Subfolder, "output subfolder (empty for none)")
	fs.StringVar(&f.envFile, "env-file", ".env", "file providing "+EnvPrefix+"* defaults")
	fs.BoolVarP(&f.interactive, "interactive", "i", false, "prompt for every parameter")
}

// envName returns the environment variable overriding flag name.
func envName(name string) string {
	return EnvPrefix + strings.ToUpper(strings.Replace(name, "-", "_", -1))
}

// applyEnv loads the env file, if any, then sets every flag not given on the
// command line from its environment variable.
func (f *paramFlags) applyEnv(fs *pflag.FlagSet) error {
	if f.envFile != "" {
		if err := godotenv.Load(f.envFile); err != nil && !os.IsNotExist(errors.Cause(err)) {
			return errors.Wrapf(err, "loading %s", f.envFile)
		}
	}
	var err error
	fs.VisitAll(func(fl *pflag.Flag) {
		if err != nil || fl.Changed || fl.Name == "env-file" {
			return
		}
		v, ok := os.LookupEnv(envName(fl.Name))
		if !ok {
			return
		}
		if e := fl.Value.Set(v); e != nil {
			err = errors.Wrapf(e, "%s", envName(fl.Name))
		}
	})
	return err
}

// prompter asks for parameter values on a terminal. An empty answer keeps the
// default.
type prompter struct {
	r   *bufio.Reader
	w   io.Writer
	err error
}

func (q *prompter) line(prompt string) string {
	if q.err != nil {
		return ""
	}
	fmt.Fprint(q.w, prompt)
	s, err := q.r.ReadString('\n')
	if err != nil && (err != io.EOF || s == "") {
		if err != io.EOF {
			q.err = err
		}
		return ""
	}
	return strings.TrimSpace(s)
}

func (q *prompter) str(prompt string, v *string) {
	if s := q.line(prompt + " [" + *v + "]: "); s != "" {
		*v = s
	}
}

func (q *prompter) integer(prompt string, v *int) {
	s := q.line(prompt + " [" + strconv.Itoa(*v) + "]: ")
	if s == "" || q.err != nil {
		return
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		q.err = errors.Errorf("%s: invalid integer %q", prompt, s)
		return
	}
	*v = i
}

func (q *prompter) yesNo(prompt string, v *bool) {
	d := "y/N"
	if *v {
		d = "Y/n"
	}
	s := strings.ToLower(q.line(prompt + " (" + d + "): "))
	if s == "" {
		return
	}
	switch s {
	case "y", "yes", "1", "true", "t":
		*v = true
	default:
		*v = false
	}
}

// prompt asks for every parameter in p, using the current values as defaults.
func prompt(r io.Reader, w io.Writer, p *secmem.Params) error {
	q := &prompter{r: bufio.NewReader(r), w: w}
	fmt.Fprintln(w, "=== secmem memory compiler ===")
	q.integer("word count", &p.Words)
	q.integer("word width", &p.WordWidth)
	q.integer("mux", &p.Mux)
	q.integer("FAULT width", &p.FaultWidth)
	q.str("WF word mask (0x/0b/decimal)", &p.WFWordMask)
	q.str("RD word mask (0x/0b/decimal)", &p.RDWordMask)
	q.str("WF bit mask (0x/0b/decimal)", &p.WFBitMask)
	q.str("RD bit mask (0x/0b/decimal)", &p.RDBitMask)
	q.yesNo("enable ECC", &p.ECC)
	q.yesNo("enable WF fault injection", &p.WriteFailure)
	q.yesNo("enable RD fault injection", &p.ReadDisturb)
	q.str("output root directory", &p.OutputDir)
	q.str("output subfolder (empty for none)", &p.Subfolder)
	return q.err
}

// params returns the final parameters: flags, then environment, then prompts.
func (f *paramFlags) params(fs *pflag.FlagSet, in io.Reader, out io.Writer) (secmem.Params, error) {
	if err := f.applyEnv(fs); err != nil {
		return f.p, err
	}
	if f.interactive {
		if err := prompt(in, out, &f.p); err != nil {
			return f.p, errors.Wrap(err, "reading parameters")
		}
	}
	return f.p, nil
}
