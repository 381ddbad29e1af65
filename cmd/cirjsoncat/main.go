// Copyright (C) 2022 Sneller, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

// Command cirjsoncat reads one or more CirJSON documents and re-emits
// them on stdout, optionally pretty-printed. It exercises the cirjson
// package's public Factory/Reader/Writer surface end to end.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"

	"github.com/cirjson-go/cirjson"
)

func main() {
	pretty := flag.Bool("pretty", false, "pretty-print the re-emitted output")
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	cfg := config{}
	if *configPath != "" {
		var err error
		cfg, err = loadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "can't load config %q: %s\n", *configPath, err)
			os.Exit(1)
		}
	}
	if *pretty {
		cfg.Pretty = true
	}

	factory := cfg.builder().Build()

	args := flag.Args()
	if len(args) == 0 {
		args = []string{"-"}
	}

	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	status := 0
	for _, arg := range args {
		if err := catOne(factory, out, arg, cfg.Pretty); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %s\n", arg, err)
			status = 1
		}
	}
	out.Flush()
	os.Exit(status)
}

func catOne(factory *cirjson.Factory, out *bufio.Writer, arg string, pretty bool) error {
	var reader *cirjson.Reader
	if arg == "-" {
		r, err := factory.NewReaderFromIOReader(os.Stdin)
		if err != nil {
			return err
		}
		reader = r
	} else {
		closer, r, err := factory.NewReaderFromFile(arg)
		if err != nil {
			return err
		}
		defer closer.Close()
		reader = r
	}

	writer := factory.NewWriterToIOWriter(out)
	if pretty {
		writer.SetPrettyPrinter(&indentPrinter{})
	}
	defer writer.Close()

	return copyDocument(reader, writer)
}

// idFeed is an ObjectWriteContext that hands the Writer back exactly
// the identity string the Reader just produced, so re-emission
// preserves a document's original __cirJsonId__ values instead of
// minting fresh ones.
type idFeed struct {
	id       string
	isObject bool
}

func (f *idFeed) InObject() bool      { return f.isObject }
func (f *idFeed) InArray() bool       { return !f.isObject }
func (f *idFeed) GetObjectID() string { return f.id }
func (f *idFeed) GetArrayID() string  { return f.id }

// copyDocument drives reader token-by-token into writer until the
// reader reports NoToken (clean end of input) or returns an error.
func copyDocument(r *cirjson.Reader, w *cirjson.Writer) error {
	for {
		tok, err := r.NextToken()
		if err != nil {
			return err
		}
		switch tok {
		case cirjson.NoToken, cirjson.NotAvailable:
			return nil
		case cirjson.StartObject:
			if err := startStructure(r, w, true); err != nil {
				return err
			}
		case cirjson.StartArray:
			if err := startStructure(r, w, false); err != nil {
				return err
			}
		case cirjson.EndObject:
			if err := w.EndObject(); err != nil {
				return err
			}
		case cirjson.EndArray:
			if err := w.EndArray(); err != nil {
				return err
			}
		case cirjson.PropertyName:
			name, err := r.StringValue()
			if err != nil {
				return err
			}
			if err := w.WriteName(name); err != nil {
				return err
			}
		case cirjson.ValueString:
			s, err := r.StringValue()
			if err != nil {
				return err
			}
			if err := w.WriteString(s); err != nil {
				return err
			}
		case cirjson.ValueNumberInt:
			if r.NumberType() == cirjson.NumberBigInt {
				v, err := r.BigIntegerValue()
				if err != nil {
					return err
				}
				if err := w.WriteBigInt(v); err != nil {
					return err
				}
				break
			}
			v, err := r.Int64Value()
			if err != nil {
				return err
			}
			if err := w.WriteInt(v); err != nil {
				return err
			}
		case cirjson.ValueNumberFloat:
			v, err := r.DoubleValue()
			if err != nil {
				return err
			}
			if err := w.WriteFloat64(v); err != nil {
				return err
			}
		case cirjson.ValueTrue:
			if err := w.WriteBool(true); err != nil {
				return err
			}
		case cirjson.ValueFalse:
			if err := w.WriteBool(false); err != nil {
				return err
			}
		case cirjson.ValueNull:
			if err := w.WriteNull(); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unexpected token %v at %v", tok, r.CurrentPath())
		}
	}
}

// startStructure consumes the mandatory IDPropertyName token that
// immediately follows a StartObject/StartArray and forwards it to the
// writer via idFeed before the loop resumes with the frame's body.
func startStructure(r *cirjson.Reader, w *cirjson.Writer, isObject bool) error {
	idTok, err := r.NextToken()
	if err != nil {
		return err
	}
	if idTok != cirjson.IDPropertyName {
		return fmt.Errorf("expected identity value, got %v at %v", idTok, r.CurrentPath())
	}
	id, err := r.StringValue()
	if err != nil {
		return err
	}
	feed := &idFeed{id: id, isObject: isObject}
	if isObject {
		return w.StartObject(feed)
	}
	return w.StartArray(feed)
}
