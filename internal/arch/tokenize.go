package arch

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/objdiff/objdiff-go/internal/obj"
)

var (
	immRe       = regexp.MustCompile(`^-?(0x[0-9a-fA-F]+|\d+)$`)
	offsetRegRe = regexp.MustCompile(`^(-?(?:0x[0-9a-fA-F]+|\d+))\(([^)]+)\)$`)
)

// TokenizeOperands splits a syntax library's rendered operand string (e.g.
// "r3, 4(r1)") into the neutral Argument taxonomy: commas and parens become
// PlainText, immediates become Signed/Unsigned, everything else (registers,
// condition codes) stays PlainText (§4.B "registers and syntactic glue
// become PlainText; immediate literals become Signed/Unsigned").
func TokenizeOperands(text string) []obj.Argument {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	parts := strings.Split(text, ",")
	args := make([]obj.Argument, 0, len(parts)*2)
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if i > 0 {
			args = append(args, obj.PlainText(","))
		}
		if m := offsetRegRe.FindStringSubmatch(p); m != nil {
			args = append(args, numericArg(m[1]))
			args = append(args, obj.PlainText("("))
			args = append(args, obj.PlainText(m[2]))
			args = append(args, obj.PlainText(")"))
			continue
		}
		if immRe.MatchString(p) {
			args = append(args, numericArg(p))
			continue
		}
		args = append(args, obj.PlainText(p))
	}
	return args
}

func numericArg(s string) obj.Argument {
	neg := strings.HasPrefix(s, "-")
	digits := strings.TrimPrefix(s, "-")
	base := 10
	if strings.HasPrefix(digits, "0x") {
		base = 16
		digits = digits[2:]
	}
	v, err := strconv.ParseUint(digits, base, 64)
	if err != nil {
		return obj.PlainText(s)
	}
	if neg {
		return obj.Signed(-int64(v))
	}
	return obj.Unsigned(v)
}

// SplitMnemonic splits a syntax library's full instruction text (e.g.
// "bl 0x1000" or "add r3, r3, r4") into its mnemonic and raw operand text.
func SplitMnemonic(text string) (mnemonic, operands string) {
	text = strings.TrimSpace(text)
	i := strings.IndexAny(text, " \t")
	if i < 0 {
		return text, ""
	}
	return text[:i], strings.TrimSpace(text[i+1:])
}

// ReplaceOrAppendReloc substitutes the sole numeric argument with a
// relocation marker, or appends one if no numeric argument is present —
// mirroring the original's "process_instruction" fallback: if a relocation
// was never emitted while formatting, tack it onto the end (§4.B).
func ReplaceOrAppendReloc(args []obj.Argument) []obj.Argument {
	for i, a := range args {
		if a.Kind == obj.ArgSigned || a.Kind == obj.ArgUnsigned {
			out := make([]obj.Argument, len(args))
			copy(out, args)
			out[i] = obj.RelocArg()
			return out
		}
	}
	return append(args, obj.RelocArg())
}
