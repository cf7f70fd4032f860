// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"os"
	"sort"

	flag "github.com/spf13/pflag"

	"github.com/wasmcore/wasmcore/disasm"
	"github.com/wasmcore/wasmcore/wasm"
	"github.com/wasmcore/wasmcore/wasm/leb128"
	"github.com/wasmcore/wasmcore/wasm/operators"
)

// TODO: track the number of imported funcs,memories,tables and globals to adjust
// for their index offset when printing sections' content.

func init() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: wasm-dump [options] file1.wasm [file2.wasm [...]]

ex:
 $> wasm-dump -h ./file1.wasm

options:
`,
		)
		flag.PrintDefaults()
		os.Exit(1)
	}
}

var (
	flagVerbose = flag.BoolP("verbose", "v", false, "enable/disable verbose mode")
	flagHeaders = flag.BoolP("headers", "h", false, "print headers")
	// flagSection = flag.StringP("section", "j", "", "select just one section")
	flagFull    = flag.BoolP("full", "s", false, "print raw section contents")
	flagDis     = flag.BoolP("disassemble", "d", false, "disassemble function bodies")
	flagDetails = flag.BoolP("details", "x", false, "show section details")
)

func main() {
	log.SetPrefix("wasm-dump: ")
	log.SetFlags(0)

	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	if !*flagHeaders && !*flagFull && !*flagDis && !*flagDetails {
		flag.Usage()
		flag.PrintDefaults()
		log.Printf("At least one of -d, -h, -x or -s must be given")
		os.Exit(1)
	}

	wasm.PrintDebugInfo = *flagVerbose

	for i, fname := range flag.Args() {
		if i > 0 {
			fmt.Printf("\n")
		}
		process(fname)
	}
}

func process(fname string) {
	f, err := os.Open(fname)
	if err != nil {
		log.Fatalf("could not open %q: %v", fname, err)
	}
	defer f.Close()

	m, err := wasm.ReadModule(f, nil)
	if err != nil {
		log.Fatalf("could not read module: %v", err)
	}

	if *flagHeaders {
		printHeaders(f.Name(), m)
	}
	if *flagFull {
		printFull(f.Name(), m)
	}
	if *flagDis {
		printDis(f.Name(), m)
	}
	if *flagDetails {
		printDetails(f.Name(), m)
	}
}

func printHeaders(fname string, m *wasm.Module) {
	fmt.Printf("%s: module version: %#x\n\n", fname, m.Version)
	fmt.Printf("sections:\n\n")

	hdrfmt := "%9s start=0x%08x end=0x%08x (size=0x%08x) count: %d\n"
	if sec := m.Types; sec != nil {
		fmt.Printf(hdrfmt,
			sec.ID.String(),
			sec.Section.Start, sec.Section.End, sec.Section.PayloadLen,
			len(sec.Entries),
		)
	}
	if sec := m.Import; sec != nil {
		fmt.Printf(hdrfmt,
			sec.ID.String(),
			sec.Section.Start, sec.Section.End, sec.Section.PayloadLen,
			len(sec.Entries),
		)
	}
	if sec := m.Function; sec != nil {
		fmt.Printf(hdrfmt,
			sec.ID.String(),
			sec.Section.Start, sec.Section.End, sec.Section.PayloadLen,
			len(sec.Types),
		)
	}
	if sec := m.Table; sec != nil {
		fmt.Printf(hdrfmt,
			sec.ID.String(),
			sec.Section.Start, sec.Section.End, sec.Section.PayloadLen,
			len(sec.Entries),
		)
	}
	if sec := m.Memory; sec != nil {
		fmt.Printf(hdrfmt,
			sec.ID.String(),
			sec.Section.Start, sec.Section.End, sec.Section.PayloadLen,
			len(sec.Entries),
		)
	}
	if sec := m.Global; sec != nil {
		fmt.Printf(hdrfmt,
			sec.ID.String(),
			sec.Section.Start, sec.Section.End, sec.Section.PayloadLen,
			len(sec.Globals),
		)
	}
	if sec := m.Export; sec != nil {
		fmt.Printf(hdrfmt,
			sec.ID.String(),
			sec.Section.Start, sec.Section.End, sec.Section.PayloadLen,
			len(sec.Entries),
		)
	}
	if sec := m.Start; sec != nil {
		hdrfmt := "%9s start=0x%08x end=0x%08x (size=0x%08x) start: %d\n"
		fmt.Printf(hdrfmt,
			sec.ID.String(),
			sec.Section.Start, sec.Section.End, sec.Section.PayloadLen,
			sec.Index,
		)
	}
	if sec := m.Elements; sec != nil {
		fmt.Printf(hdrfmt,
			sec.ID.String(),
			sec.Section.Start, sec.Section.End, sec.Section.PayloadLen,
			len(sec.Entries),
		)
	}
	if sec := m.Code; sec != nil {
		fmt.Printf(hdrfmt,
			sec.ID.String(),
			sec.Section.Start, sec.Section.End, sec.Section.PayloadLen,
			len(sec.Bodies),
		)
	}
	if sec := m.Data; sec != nil {
		fmt.Printf(hdrfmt,
			sec.ID.String(),
			sec.Section.Start, sec.Section.End, sec.Section.PayloadLen,
			len(sec.Entries),
		)
	}
	for _, sec := range m.Other {
		fmt.Printf("%9s start=0x%08x end=0x%08x (size=0x%08x) %q\n",
			sec.ID.String(),
			sec.Start, sec.End, sec.PayloadLen,
			sec.Name,
		)
	}
}

func printFull(fname string, m *wasm.Module) {
	fmt.Printf("%s: module version: %#x\n\n", fname, m.Version)

	hdrfmt := "contents of section %s:\n"
	var sections []*wasm.Section

	if sec := m.Types; sec != nil {
		sections = append(sections, &sec.Section)
	}
	if sec := m.Import; sec != nil {
		sections = append(sections, &sec.Section)
	}
	if sec := m.Function; sec != nil {
		sections = append(sections, &sec.Section)
	}
	if sec := m.Table; sec != nil {
		sections = append(sections, &sec.Section)
	}
	if sec := m.Memory; sec != nil {
		sections = append(sections, &sec.Section)
	}
	if sec := m.Global; sec != nil {
		sections = append(sections, &sec.Section)
	}
	if sec := m.Export; sec != nil {
		sections = append(sections, &sec.Section)
	}
	if sec := m.Start; sec != nil {
		sections = append(sections, &sec.Section)
	}
	if sec := m.Elements; sec != nil {
		sections = append(sections, &sec.Section)
	}
	if sec := m.Code; sec != nil {
		sections = append(sections, &sec.Section)
	}
	if sec := m.Data; sec != nil {
		sections = append(sections, &sec.Section)
	}
	for i := range m.Other {
		sections = append(sections, &m.Other[i])
	}

	for _, sec := range sections {
		fmt.Printf(hdrfmt, sec.ID.String())
		fmt.Println(hexDump(sec.Bytes, uint(sec.Start)))
	}
}

func printDis(fname string, m *wasm.Module) {
	fmt.Printf("%s: module version: %#x\n\n", fname, m.Version)
	fmt.Printf("code disassembly:\n")
	for i := range m.Function.Types {
		f := m.GetFunction(i)
		fmt.Printf("\nfunc[%d]: %v\n", i, f.Sig)

		var arity uint8
		if len(f.Sig.ReturnTypes) > 0 {
			arity = 1
		}
		code, err := disasm.Parse(f.Body.Code, m, arity)
		if err != nil {
			log.Fatal(err)
		}

		for idx, instr := range code.Instructions {
			op, err := operators.New(instr)
			if err != nil {
				log.Fatal(err)
			}

			start := int(code.InstrOffsets[idx])
			end := len(code.Immediates)
			if idx+1 < len(code.InstrOffsets) {
				end = int(code.InstrOffsets[idx+1])
			}
			imm := code.Immediates[start:end]

			buf := new(bytes.Buffer)
			fmt.Fprintf(buf, "%02x", instr)
			for _, b := range imm {
				fmt.Fprintf(buf, " %02x", b)
			}
			fmt.Printf(" %06x: %-26s | %s\n", start, buf.String(), op.Name)
		}
	}
}

// hexDump renders data as a classic offset/hex/ASCII dump, 16 bytes
// per line, with addr as the starting address printed on the first
// line.
func hexDump(data []byte, addr uint) string {
	buf := new(bytes.Buffer)
	for i := 0; i < len(data); i += 16 {
		end := i + 16
		if end > len(data) {
			end = len(data)
		}
		line := data[i:end]

		fmt.Fprintf(buf, "  %06x", addr+uint(i))
		for j := 0; j < 16; j++ {
			if j%2 == 0 {
				fmt.Fprintf(buf, " ")
			}
			if j < len(line) {
				fmt.Fprintf(buf, "%02x", line[j])
			} else {
				fmt.Fprintf(buf, "  ")
			}
		}
		fmt.Fprintf(buf, "  ")
		for _, c := range line {
			if c >= 0x20 && c < 0x7f {
				buf.WriteByte(c)
			} else {
				buf.WriteByte('.')
			}
		}
		if end < len(data) {
			buf.WriteByte('\n')
		}
	}
	return buf.String()
}

func printDetails(fname string, m *wasm.Module) {
	fmt.Printf("%s: module version: %#x\n\n", fname, m.Version)
	fmt.Printf("section details:\n\n")

	if sec := m.Types; sec != nil {
		fmt.Printf("%v:\n", sec.ID)
		for i, f := range sec.Entries {
			fmt.Printf(" - type[%d] %v\n", i, f)
		}
	}
	if sec := m.Import; sec != nil {
		fmt.Printf("%v:\n", sec.ID)
		for i, e := range sec.Entries {
			buf := new(bytes.Buffer)
			switch typ := e.Type.(type) {
			case wasm.GlobalVarImport:
				fmt.Fprintf(buf, "%s mutable=%v",
					typ.Type.Type,
					typ.Type.Mutable,
				)
			case wasm.FuncImport:
				fmt.Fprintf(buf, "sig=%v", typ.Type)
			case wasm.MemoryImport:
				fmt.Fprintf(buf, "pages: initial=%d max=%d",
					typ.Type.Limits.Initial,
					typ.Type.Limits.Maximum,
				)
			case wasm.TableImport:
				fmt.Fprintf(buf, "elem_type=%v init=%v max=%v",
					typ.Type.ElementType,
					typ.Type.Limits.Initial,
					typ.Type.Limits.Maximum,
				)
			}
			fmt.Printf(" - %v[%d] %s <- %s.%s\n",
				e.Kind, i, buf.String(), e.ModuleName, e.FieldName,
			)
		}
	}
	if sec := m.Function; sec != nil {
		fmt.Printf("%v:\n", sec.ID)
		for i, t := range sec.Types {
			fmt.Printf(" - func[%d] sig=%d\n", i, t)
		}
	}
	if sec := m.Table; sec != nil {
		fmt.Printf("%v:\n", sec.ID)
		for i, e := range sec.Entries {
			fmt.Printf(" - table[%d] type=%v initial=%v\n", i, e.ElementType, e.Limits.Initial)
		}
	}
	if sec := m.Memory; sec != nil {
		fmt.Printf("%v:\n", sec.ID)
		for i, e := range sec.Entries {
			fmt.Printf(" - memory[%d] pages: initial=%v\n", i, e.Limits.Initial)
		}
	}
	if sec := m.Global; sec != nil {
		fmt.Printf("%v:\n", sec.ID)
		for i, g := range sec.Globals {
			// TODO(sbinet) display init infos
			fmt.Printf(" - global[%d] %v mutable=%v -- init: %#v\n", i, g.Type.Type, g.Type.Mutable, g.Init)
		}
	}
	if sec := m.Export; sec != nil {
		fmt.Printf("%v:\n", sec.ID)
		keys := make([]string, 0, len(sec.Entries))
		for n := range sec.Entries {
			keys = append(keys, n)
		}
		sort.Strings(keys)
		for _, name := range keys {
			e := sec.Entries[name]
			fmt.Printf(" - %v[%d] -> %q\n", e.Kind, e.Index, name)
		}
	}
	if sec := m.Start; sec != nil {
		fmt.Printf("%v:\n", sec.ID)
		fmt.Printf(" - start function: %d\n", sec.Index)
	}
	if sec := m.Elements; sec != nil {
		fmt.Printf("%v:\n", sec.ID)
		for i, e := range sec.Entries {
			fmt.Printf(" - segment[%d] table=%d\n", i, e.Index)
			fmt.Printf(" - init: %#v\n", e.Offset)
			for ii, elem := range e.Elems {
				fmt.Printf("  - elem[%d] = func[%d]\n", ii, elem)
			}
		}
	}
	if sec := m.Data; sec != nil {
		fmt.Printf("%v:\n", sec.ID)
		for i, e := range sec.Entries {
			fmt.Printf(" - segment[%d] size=%d - init %#v\n", i, len(e.Data), e.Offset)
			fmt.Printf("%s", hexDump(e.Data, 0))
		}
	}
	for _, sec := range m.Other {
		fmt.Printf("%v:\n", sec.ID)
		fmt.Printf(" - name: %q\n", sec.Name)
		raw := bytes.NewReader(sec.Bytes[6:])
		for {
			if raw.Len() == 0 {
				break
			}
			i, err := leb128.ReadVarUint32(raw)
			if err != nil {
				log.Fatal(err)
			}
			n, err := leb128.ReadVarUint32(raw)
			if err != nil {
				log.Fatal(err)
			}
			str := make([]byte, int(n))
			_, err = io.ReadFull(raw, str)
			if err != nil {
				log.Fatal(err)
			}
			fmt.Printf(" - func[%d] %v\n", i, string(str))
		}
	}
}
