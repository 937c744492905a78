package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"golang.org/x/text/unicode/norm"

	"ecmacore/internal/bignum"
	"ecmacore/internal/ecma"
)

var inspectNFC bool

func init() {
	inspectCmd.Flags().BoolVar(&inspectNFC, "nfc", false, "normalize string literals to NFC before interning")
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <literal>...",
	Short: "Show how literals are encoded as value words",
	Long: `inspect creates one value per argument and prints its tagged word.

Literals: undefined null true false empty hole, numbers (42, -0, 1e300, NaN,
Infinity), bigints (123n, -0xffn), "quoted" or bare strings, sym:<desc>,
object, array, function, proxy, revoked, error:<message>.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		tracer, cleanup, err := setupTracing(cmd, cfg)
		if err != nil {
			return err
		}
		defer cleanup()
		opts, err := cfg.ContextOptions(tracer)
		if err != nil {
			return err
		}
		return guardFatal(cmd.ErrOrStderr(), tracer, func() error {
			return runInspect(cmd.OutOrStdout(), opts, args)
		})
	},
}

func runInspect(out io.Writer, opts ecma.Options, args []string) error {
	c, err := ecma.NewContext(opts)
	if err != nil {
		return err
	}
	values := make([]ecma.Value, 0, len(args))
	rows := make([][]string, 0, len(args))
	for _, arg := range args {
		v, err := parseLiteral(c, arg)
		if err != nil {
			releaseAll(c, values)
			_ = c.Close()
			return fmt.Errorf("%s: %w", arg, err)
		}
		values = append(values, v)
		rows = append(rows, describe(c, arg, v))
	}

	header := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("INPUT", "WORD", "TYPE", "KIND", "TYPEOF", "ISARRAY", "OWNS", "DETAIL").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == 0 {
				return header
			}
			return cell
		})
	fmt.Fprintln(out, t.Render())

	releaseAll(c, values)
	return c.Close()
}

func releaseAll(c *ecma.Context, values []ecma.Value) {
	for _, v := range values {
		if v.IsErrorReference() {
			c.ReleaseError(v)
			continue
		}
		c.Free(v)
	}
}

func parseLiteral(c *ecma.Context, s string) (ecma.Value, error) {
	switch s {
	case "undefined":
		return ecma.Undefined, nil
	case "null":
		return ecma.Null, nil
	case "true":
		return ecma.True, nil
	case "false":
		return ecma.False, nil
	case "empty":
		return ecma.Empty, nil
	case "hole":
		return ecma.ArrayHole, nil
	case "object":
		return c.NewObject(ecma.ObjectGeneral), nil
	case "array":
		return c.NewArray(0), nil
	case "function":
		return c.NewFunction(), nil
	case "proxy", "revoked":
		target := c.NewArray(0)
		handler := c.NewObject(ecma.ObjectGeneral)
		p := c.NewProxy(target, handler)
		c.Free(target)
		c.Free(handler)
		if s == "revoked" {
			c.RevokeProxy(p)
		}
		return p, nil
	}
	if desc, ok := strings.CutPrefix(s, "sym:"); ok {
		d := ecma.Undefined
		if desc != "" {
			d = c.NewString(normalize(desc))
		}
		return c.NewSymbol(d), nil
	}
	if msg, ok := strings.CutPrefix(s, "error:"); ok {
		return c.RaiseTypeError(msg), nil
	}
	if strings.HasSuffix(s, "n") {
		body, neg := strings.CutPrefix(s, "-")
		if n, err := bignum.ParseLiteral(body); err == nil {
			if neg {
				n = n.Neg()
			}
			return c.NewBigInt(n), nil
		}
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return c.MakeNumber(f), nil
	}
	if strings.HasPrefix(s, `"`) {
		u, err := strconv.Unquote(s)
		if err != nil {
			return ecma.Undefined, err
		}
		return c.NewString(normalize(u)), nil
	}
	return c.NewString(normalize(s)), nil
}

func normalize(s string) string {
	if inspectNFC {
		return norm.NFC.String(s)
	}
	return s
}

func describe(c *ecma.Context, input string, v ecma.Value) []string {
	typeOf, isArray := "-", "-"
	switch v.Kind() {
	case ecma.KindEmpty, ecma.KindUninitialized, ecma.KindArrayHole, ecma.KindNotFound, ecma.KindErrorReference:
	default:
		typeOf = c.TypeOf(v).String()
	}
	if !v.IsErrorReference() {
		r := c.IsArray(v)
		if r.IsErrorReference() {
			isArray = "TypeError"
			c.Free(c.TakeError(r))
		} else {
			isArray = strconv.FormatBool(r.IsTrue())
		}
	}
	return []string{
		input,
		fmt.Sprintf("%#016x", uint64(v)),
		v.Type().String(),
		v.Kind().String(),
		typeOf,
		isArray,
		strconv.FormatBool(v.OwnsMemory()),
		detail(c, v),
	}
}

func detail(c *ecma.Context, v ecma.Value) string {
	switch {
	case v.IsNumber():
		return strconv.FormatFloat(c.GetNumber(v), 'g', -1, 64)
	case v.IsString():
		return fmt.Sprintf("%q len=%d", c.StringChars(v), c.StringLength(v))
	case v.IsSymbol():
		d := c.SymbolDescription(v)
		if d.IsUndefined() {
			return "Symbol()"
		}
		return fmt.Sprintf("Symbol(%s)", c.StringChars(d))
	case v.IsBigInt():
		return c.BigIntOf(v).String() + "n"
	case v.IsObject():
		o := c.ObjectOf(v)
		return fmt.Sprintf("%s refs=%d", o.Type(), c.RefCountOf(v))
	case v.IsErrorReference():
		thrown := c.ErrorValue(v)
		return fmt.Sprintf("throw %s: %s", c.ErrorClass(thrown), c.ErrorMessage(thrown))
	}
	return v.String()
}
