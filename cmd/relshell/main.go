// Command relshell is a demo REPL over relcore's storage and execution
// engine: a line interpreter for a small set of canned commands
// (create/insert/select/delete/tables), not a SQL parser, grounded on
// the teacher's readline-based sqlclient REPL but talking directly to
// an in-process catalog and buffer pool instead of a TCP server.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/chzyer/readline"

	"github.com/relcore/relcore/internal/bufferpool"
	"github.com/relcore/relcore/internal/catalog"
	"github.com/relcore/relcore/internal/config"
	"github.com/relcore/relcore/internal/engine"
	"github.com/relcore/relcore/internal/field"
	"github.com/relcore/relcore/internal/storage"
)

// db bundles the engine's components the way a real embedder would
// wire them: disk manager, buffer pool, catalog, and a single
// long-lived transaction (relcore has no transaction manager yet).
type db struct {
	disk    storage.DiskManager
	pool    *bufferpool.Pool
	catalog *catalog.MemCatalog
	txn     *catalog.HeapTransaction
}

func open(cfg *config.Config) (*db, error) {
	var disk storage.DiskManager
	if cfg.Storage.DataDir == ":memory:" {
		disk = storage.NewMemDiskManager()
	} else {
		if err := os.MkdirAll(cfg.Storage.DataDir, 0o755); err != nil {
			return nil, fmt.Errorf("relshell: create data dir: %w", err)
		}
		fd, err := storage.OpenFileDiskManager(filepath.Join(cfg.Storage.DataDir, "relshell.pages"))
		if err != nil {
			return nil, err
		}
		disk = fd
	}

	pool := bufferpool.New(cfg.BufferPool.PoolSize, cfg.BufferPool.ReplacerK, disk)
	cat := catalog.NewMemCatalog()
	txn := catalog.NewHeapTransaction(cat, pool)
	return &db{disk: disk, pool: pool, catalog: cat, txn: txn}, nil
}

func (d *db) close() error {
	if err := d.pool.FlushAllPages(); err != nil {
		return err
	}
	return d.disk.Close()
}

func main() {
	var (
		dataDir   = flag.String("data", ":memory:", "data directory, or :memory: for an in-memory store")
		poolSize  = flag.Int("pool-size", 64, "buffer pool frame count")
		replacerK = flag.Int("replacer-k", 2, "LRU-K replacer K")
		oneShot   = flag.String("c", "", "run one command and exit")
	)
	flag.Parse()

	cfg := config.Default()
	cfg.Storage.DataDir = *dataDir
	cfg.BufferPool.PoolSize = *poolSize
	cfg.BufferPool.ReplacerK = *replacerK

	d, err := open(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "relshell: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = d.close() }()

	if strings.TrimSpace(*oneShot) != "" {
		if err := d.runLine(*oneShot); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "relshell> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "readline: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = rl.Close() }()

	fmt.Println("relcore demo shell. type \\help for commands.")
	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			fmt.Println("^C")
			continue
		}
		if err != nil {
			fmt.Println()
			return
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "\\q" || line == "quit" || line == "exit" {
			return
		}
		if line == "\\help" {
			printHelp()
			continue
		}
		if err := d.runLine(line); err != nil {
			fmt.Printf("error: %v\n", err)
		}
	}
}

func printHelp() {
	fmt.Println(`commands:
  create <table> <col:type[:null]> ...   type is bool|int|float|string
  insert <table> <v> ...                 literal values, NULL for null
  select <table>                         full table scan
  delete <table> <col> <value>           delete rows where col = value
  tables                                 not supported (prints a notice)
  \q | quit | exit                       quit
  \help                                  this text`)
}

func (d *db) runLine(line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	switch fields[0] {
	case "create":
		return d.cmdCreate(fields[1:])
	case "insert":
		return d.cmdInsert(fields[1:])
	case "select":
		return d.cmdSelect(fields[1:])
	case "delete":
		return d.cmdDelete(fields[1:])
	case "tables":
		return d.cmdTables()
	default:
		return fmt.Errorf("unknown command %q (try \\help)", fields[0])
	}
}

func (d *db) cmdCreate(args []string) error {
	if len(args) < 2 {
		return errors.New("usage: create <table> <col:type[:null]> ...")
	}
	schema := catalog.TableSchema{Name: args[0]}
	for _, spec := range args[1:] {
		parts := strings.Split(spec, ":")
		col := catalog.Column{Name: parts[0]}
		if len(parts) < 2 {
			return fmt.Errorf("column %q missing :type", spec)
		}
		switch strings.ToLower(parts[1]) {
		case "bool", "boolean":
			col.Type = catalog.TypeBoolean
		case "int", "integer":
			col.Type = catalog.TypeInteger
		case "float":
			col.Type = catalog.TypeFloat
		case "string", "str":
			col.Type = catalog.TypeString
		default:
			return fmt.Errorf("column %q: unknown type %q", spec, parts[1])
		}
		if len(parts) >= 3 && parts[2] == "null" {
			col.Nullable = true
		}
		schema.Columns = append(schema.Columns, col)
	}
	if err := d.catalog.CreateTable(schema); err != nil {
		return err
	}
	fmt.Printf("table %q created (%d columns)\n", schema.Name, schema.Width())
	return nil
}

func (d *db) cmdInsert(args []string) error {
	if len(args) < 2 {
		return errors.New("usage: insert <table> <value> ...")
	}
	table := args[0]
	schema, ok := d.catalog.GetTable(table)
	if !ok {
		return fmt.Errorf("no such table: %s", table)
	}
	values := args[1:]
	if len(values) != schema.Width() {
		return fmt.Errorf("table %s has %d columns, got %d values", table, schema.Width(), len(values))
	}
	row := make([]field.Field, len(values))
	for i, v := range values {
		f, err := parseLiteral(v, schema.Columns[i].Type)
		if err != nil {
			return err
		}
		row[i] = f
	}

	plan := engine.InsertPlan{
		Table:  table,
		Source: &engine.ValuesNode{Rows: []field.Row{field.NewRow(row)}},
	}
	res, err := engine.ExecutePlan(plan, d.catalog, d.txn)
	if err != nil {
		return err
	}
	fmt.Printf("inserted %d row(s)\n", res.Count)
	return nil
}

func (d *db) cmdSelect(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: select <table>")
	}
	table := args[0]
	schema, ok := d.catalog.GetTable(table)
	if !ok {
		return fmt.Errorf("no such table: %s", table)
	}
	labels := make([]field.Label, schema.Width())
	for i, c := range schema.Columns {
		labels[i] = field.NewLabel(c.Name)
	}
	plan := engine.SelectPlan{Root: engine.NewScanNode(table, nil, labels)}
	res, err := engine.ExecutePlan(plan, d.catalog, d.txn)
	if err != nil {
		return err
	}
	return printRows(res)
}

func (d *db) cmdDelete(args []string) error {
	if len(args) != 3 {
		return errors.New("usage: delete <table> <col> <value>")
	}
	table, col, val := args[0], args[1], args[2]
	schema, ok := d.catalog.GetTable(table)
	if !ok {
		return fmt.Errorf("no such table: %s", table)
	}
	idx := -1
	for i, c := range schema.Columns {
		if c.Name == col {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("no such column: %s", col)
	}
	lit, err := parseLiteral(val, schema.Columns[idx].Type)
	if err != nil {
		return err
	}

	predicate := engine.BinaryOp{
		Kind:  engine.BinaryEq,
		Left:  engine.ColumnRef{Index: idx},
		Right: engine.Literal{Value: lit},
	}
	plan := engine.DeletePlan{
		Table: table,
		Source: &engine.FilterNode{
			Source:    &engine.ScanNode{Table: table},
			Predicate: predicate,
		},
	}
	res, err := engine.ExecutePlan(plan, d.catalog, d.txn)
	if err != nil {
		return err
	}
	fmt.Printf("deleted %d row(s)\n", res.Count)
	return nil
}

func (d *db) cmdTables() error {
	// MemCatalog has no enumeration method by design (it only resolves
	// by name); the shell tracks nothing extra, so report the limitation
	// rather than reach into catalog internals.
	fmt.Println("(table listing not supported; use 'select <table>' directly)")
	return nil
}

func parseLiteral(s string, colType catalog.ColumnType) (field.Field, error) {
	if s == "NULL" || s == "null" {
		return field.Null, nil
	}
	switch colType {
	case catalog.TypeBoolean:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return field.Field{}, fmt.Errorf("invalid boolean %q: %w", s, err)
		}
		return field.Boolean(b), nil
	case catalog.TypeInteger:
		i, err := strconv.ParseInt(s, 10, 32)
		if err != nil {
			return field.Field{}, fmt.Errorf("invalid integer %q: %w", s, err)
		}
		return field.Integer(int32(i)), nil
	case catalog.TypeFloat:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return field.Field{}, fmt.Errorf("invalid float %q: %w", s, err)
		}
		return field.Float(f), nil
	case catalog.TypeString:
		return field.String(s), nil
	default:
		return field.Field{}, fmt.Errorf("unknown column type")
	}
}

func printRows(res engine.ExecutionResult) error {
	labels := res.SelectLabels
	headers := make([]string, len(labels))
	for i, l := range labels {
		if l.Valid {
			headers[i] = l.Name
		} else {
			headers[i] = fmt.Sprintf("col%d", i)
		}
	}

	var printed [][]string
	count := 0
	for {
		row, ok, err := res.SelectRows.Next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		count++
		cells := make([]string, row.Row.Width())
		for i := 0; i < row.Row.Width(); i++ {
			cells[i] = row.Row.Get(i).String()
		}
		printed = append(printed, cells)
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range printed {
		for i, c := range row {
			if i < len(widths) && len(c) > widths[i] {
				widths[i] = len(c)
			}
		}
	}

	printRow := func(cells []string) {
		for i, h := range headers {
			if i > 0 {
				fmt.Print(" | ")
			}
			c := ""
			if i < len(cells) {
				c = cells[i]
			}
			fmt.Print(c + strings.Repeat(" ", widths[i]-len(c)))
		}
		fmt.Println()
	}
	printRow(headers)
	for i := range headers {
		if i > 0 {
			fmt.Print("-+-")
		}
		fmt.Print(strings.Repeat("-", widths[i]))
	}
	fmt.Println()
	for _, row := range printed {
		printRow(row)
	}
	fmt.Printf("(%d rows)\n", count)
	return nil
}
