// Package emitter renders a resolved design into the files consumed by the
// FPGA build: the screen memory image, the VgaDebugger module and the
// header of per-module wiring macros.
package emitter

import (
	"bufio"
	"fmt"
	"io"

	"github.com/robert-at-pretension-io/vgadbg/internal/hierarchy"
)

const macroPrefix = "VGA_DBG_"

// WriteMem writes one two-digit hex byte per line for every cell of the
// grid, row-major, padded with 00 up to the next power of two.
func WriteMem(w io.Writer, d *hierarchy.Design) error {
	bw := bufio.NewWriter(w)
	width := d.Config.TemplateWidth

	cells := 0
	for _, line := range d.Template.Lines {
		for i := 0; i < width; i++ {
			if i < len(line) {
				fmt.Fprintf(bw, "%02x\n", line[i])
			} else {
				bw.WriteString("00\n")
			}
			cells++
		}
	}
	for ; cells < d.SizePow2; cells++ {
		bw.WriteString("00\n")
	}
	return bw.Flush()
}

// WriteDebugger writes the Hex2Ascii lookup and the VgaDebugger module
// that walks the display address and drives each wire's digits into the
// cells reserved for it.
func WriteDebugger(w io.Writer, d *hierarchy.Design) error {
	bw := bufio.NewWriter(w)
	wires := d.RootModule().WiresAll

	bw.WriteString(hex2ascii)

	bw.WriteString("module VgaDebugger(\n")
	for _, wire := range wires {
		fmt.Fprintf(bw, "    input wire %s%s,\n", rangeDecl(wire.LenBits), wire.FullName)
	}
	bw.WriteString("    input wire clk,\n")
	bw.WriteString("    output reg display_wen,\n")
	fmt.Fprintf(bw, "    output wire [%d:0] display_w_addr,\n", d.AddrBits-1)
	bw.WriteString("    output wire [7:0] display_w_data\n")
	bw.WriteString(");\n\n")

	fmt.Fprintf(bw, "    reg [%d:0] display_addr = 0;\n", d.AddrBits-1)
	bw.WriteString("    assign display_w_addr = display_addr;\n")
	bw.WriteString("    always @(posedge clk) begin\n")
	fmt.Fprintf(bw, "        display_addr <= display_addr == %d ? 0 : display_addr + 1;\n", d.Size-1)
	bw.WriteString("    end\n\n")

	bw.WriteString("    reg [3:0] dynamic_hex = 0;\n")
	bw.WriteString("    Hex2Ascii hex2ascii(dynamic_hex, display_w_data);\n")
	bw.WriteString("    always @* begin\n")
	bw.WriteString("        case (display_addr)\n")
	for _, wire := range wires {
		for i := 0; i < wire.LenHex; i++ {
			hi, lo := digitSlice(wire, i)
			fmt.Fprintf(bw, "            %d: begin ", wire.Start+i)
			if hi == 0 {
				fmt.Fprintf(bw, "dynamic_hex = %s; ", wire.FullName)
			} else {
				fmt.Fprintf(bw, "dynamic_hex = %s[%d:%d]; ", wire.FullName, hi, lo)
			}
			bw.WriteString("display_wen = 1; end\n")
		}
	}
	bw.WriteString("            default: begin dynamic_hex = 0; display_wen = 0; end\n")
	bw.WriteString("        endcase\n")
	bw.WriteString("    end\n\n")
	bw.WriteString("endmodule\n")

	return bw.Flush()
}

// digitSlice returns the bit range shown by the i-th digit, counted from
// the most significant one.
func digitSlice(w hierarchy.Wire, i int) (hi, lo int) {
	hi = min(w.LenBits, (w.LenHex-i)*4) - 1
	lo = (w.LenHex - i - 1) * 4
	return hi, lo
}

// WriteHeader writes the VgaDebugger instantiation arguments and, for
// every module in design order, its Outputs, Assignments, Declaration and
// Arguments macros.
func WriteHeader(w io.Writer, d *hierarchy.Design) error {
	bw := bufio.NewWriter(w)

	bw.WriteString("// generated code")

	beginMacro(bw, "VgaDebugger_Arguments")
	for _, wire := range d.RootModule().WiresAll {
		macroLine(bw, fmt.Sprintf(".%s(dbg_%s),", wire.FullName, wire.FullName))
	}

	for _, m := range d.Ordered() {
		beginMacro(bw, m.Name+"_Outputs")
		for _, wire := range m.WiresAll {
			macroLine(bw, fmt.Sprintf("output wire %sdbg_%s,", rangeDecl(wire.LenBits), wire.FullName))
		}

		beginMacro(bw, m.Name+"_Assignments")
		for _, wire := range m.Wires {
			macroLine(bw, fmt.Sprintf("assign dbg_%s = %s;", wire.FullName, wire.CodeName))
		}

		beginMacro(bw, m.Name+"_Declaration")
		for _, wire := range m.Wires {
			macroLine(bw, fmt.Sprintf("wire %sdbg_%s;", rangeDecl(wire.LenBits), wire.FullName))
		}

		beginMacro(bw, m.Name+"_Arguments")
		for _, wire := range m.WiresAll {
			macroLine(bw, fmt.Sprintf(".dbg_%s(dbg_%s),", wire.FullName, wire.FullName))
		}
	}
	bw.WriteString("\n")

	return bw.Flush()
}

func beginMacro(bw *bufio.Writer, name string) {
	fmt.Fprintf(bw, "\n\n`define %s%s", macroPrefix, name)
}

func macroLine(bw *bufio.Writer, body string) {
	bw.WriteString(" \\\n    ")
	bw.WriteString(body)
}

// rangeDecl returns "[n-1:0] " for multi-bit wires and "" for single bits.
func rangeDecl(bits int) string {
	if bits <= 1 {
		return ""
	}
	return fmt.Sprintf("[%d:0] ", bits-1)
}

const hex2ascii = `// generated code

module Hex2Ascii(
    input wire [3:0] hex,
    output reg [7:0] ascii
);

    always @* begin
        case (hex)
            4'h0: ascii = 48;
            4'h1: ascii = 49;
            4'h2: ascii = 50;
            4'h3: ascii = 51;
            4'h4: ascii = 52;
            4'h5: ascii = 53;
            4'h6: ascii = 54;
            4'h7: ascii = 55;
            4'h8: ascii = 56;
            4'h9: ascii = 57;
            4'ha: ascii = 97;
            4'hb: ascii = 98;
            4'hc: ascii = 99;
            4'hd: ascii = 100;
            4'he: ascii = 101;
            4'hf: ascii = 102;
        endcase
    end

endmodule

`
