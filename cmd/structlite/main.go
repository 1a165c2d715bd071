// Command structlite is the maintenance CLI for structlite databases.
// It provides commands for inspecting tables, dropping and renaming
// columns, and writing compressed backups.
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ulikunitz/xz"

	"github.com/structlite/structlite/core/schema"
	"github.com/structlite/structlite/core/sqlite"
	"github.com/structlite/structlite/internal/logging"
)

const version = "0.1.0"

// CLI defines the command-line interface for structlite.
var CLI struct {
	// Global flags
	Config    string `name:"config" help:"Path to a YAML config file" type:"path"`
	LogLevel  string `name:"log-level" help:"Log level (debug|info|warn|error)" default:"info"`
	LogFormat string `name:"log-format" help:"Log format (json|text)" default:"text"`

	Info         InfoCmd         `cmd:"" help:"Show SQLite driver build information"`
	Tables       TablesCmd       `cmd:"" help:"List user tables in a database"`
	Columns      ColumnsCmd      `cmd:"" help:"Show a table's columns"`
	Drop         DropCmd         `cmd:"" help:"Drop a table"`
	RenameColumn RenameColumnCmd `cmd:"" name:"rename-column" help:"Rename a column"`
	Backup       BackupCmd       `cmd:"" help:"Write an xz-compressed copy of a database file"`
	Version      VersionCmd      `cmd:"" help:"Print version information"`
}

// InfoCmd prints the compiled-in SQLite driver configuration.
type InfoCmd struct{}

func (c *InfoCmd) Run(ctx *kong.Context) error {
	info := sqlite.GetInfo()
	fmt.Printf("driver:  %s (%s)\n", info.DriverName, info.DriverType)
	fmt.Printf("package: %s\n", info.Package)
	fmt.Printf("cgo:     %v\n", info.IsCGO)
	return nil
}

// TablesCmd lists the user tables of a database.
type TablesCmd struct {
	DB string `arg:"" optional:"" help:"Database file path" type:"path"`
}

func (c *TablesCmd) Run(ctx *kong.Context) error {
	db, err := sqlite.Open(resolveDB(c.DB))
	if err != nil {
		return err
	}
	defer db.Close()

	tables, err := sqlite.Tables(db)
	if err != nil {
		return err
	}
	for _, name := range tables {
		fmt.Println(name)
	}
	return nil
}

// ColumnsCmd shows a table's column definitions.
type ColumnsCmd struct {
	Table       string `arg:"" help:"Table name"`
	DB          string `arg:"" optional:"" help:"Database file path" type:"path"`
	Fingerprint bool   `help:"Also print a fingerprint of the table's shape"`
}

func (c *ColumnsCmd) Run(ctx *kong.Context) error {
	db, err := sqlite.Open(resolveDB(c.DB))
	if err != nil {
		return err
	}
	defer db.Close()

	info, err := sqlite.TableInfo(db, c.Table)
	if err != nil {
		return err
	}
	if len(info) == 0 {
		return fmt.Errorf("table %s does not exist", c.Table)
	}

	var parts []string
	for _, col := range info {
		line := col.Name + " " + col.Type
		if col.NotNull {
			line += " NOT NULL"
		}
		if col.Default.Valid {
			line += " DEFAULT " + col.Default.String
		}
		if col.KeyIndex > 0 {
			line += fmt.Sprintf(" [pk %d]", col.KeyIndex)
		}
		fmt.Println(line)
		parts = append(parts, line)
	}
	if c.Fingerprint {
		fmt.Println("fingerprint:", schema.FingerprintParts(parts))
	}
	return nil
}

// DropCmd drops a table. Destructive, so it insists on --force.
type DropCmd struct {
	Table string `arg:"" help:"Table name"`
	DB    string `arg:"" optional:"" help:"Database file path" type:"path"`
	Force bool   `help:"Actually drop the table"`
}

func (c *DropCmd) Run(ctx *kong.Context) error {
	if !c.Force {
		return fmt.Errorf("refusing to drop table %s without --force", c.Table)
	}
	db, err := sqlite.Open(resolveDB(c.DB))
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err := db.Exec("DROP TABLE IF EXISTS " + c.Table + ";"); err != nil {
		return err
	}
	logging.Info("dropped table", "table", c.Table)
	return nil
}

// RenameColumnCmd renames one column in place.
type RenameColumnCmd struct {
	Table string `arg:"" help:"Table name"`
	Old   string `arg:"" help:"Current column name"`
	New   string `arg:"" help:"New column name"`
	DB    string `arg:"" optional:"" help:"Database file path" type:"path"`
}

func (c *RenameColumnCmd) Run(ctx *kong.Context) error {
	db, err := sqlite.Open(resolveDB(c.DB))
	if err != nil {
		return err
	}
	defer db.Close()

	cols, err := sqlite.TableColumns(db, c.Table)
	if err != nil {
		return err
	}
	found := false
	for _, col := range cols {
		if col == c.Old {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("column %s does not exist on table %s", c.Old, c.Table)
	}

	_, err = db.Exec("ALTER TABLE " + c.Table + " RENAME COLUMN " + c.Old + " TO " + c.New + ";")
	if err != nil {
		return err
	}
	logging.Info("renamed column", "table", c.Table, "from", c.Old, "to", c.New)
	return nil
}

// BackupCmd writes an xz-compressed copy of the database file.
type BackupCmd struct {
	Out string `arg:"" help:"Output path (.xz)" type:"path"`
	DB  string `arg:"" optional:"" help:"Database file path" type:"path"`
}

func (c *BackupCmd) Run(ctx *kong.Context) error {
	src, err := os.Open(resolveDB(c.DB))
	if err != nil {
		return err
	}
	defer src.Close()

	out, err := os.Create(c.Out)
	if err != nil {
		return err
	}
	defer out.Close()

	w, err := xz.NewWriter(out)
	if err != nil {
		return err
	}
	n, err := io.Copy(w, src)
	if err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	logging.Info("backup written", "out", c.Out, "bytes", n)
	return nil
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run(ctx *kong.Context) error {
	fmt.Printf("structlite %s (%s driver)\n", version, sqlite.DriverType())
	return nil
}

// resolveDB falls back to the config file's database path when a command's
// db argument is omitted.
func resolveDB(arg string) string {
	if arg != "" {
		return arg
	}
	if cfg != nil && cfg.Database != "" {
		return cfg.Database
	}
	return "structlite.db"
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("structlite"),
		kong.Description("structlite - struct-to-SQLite record persistence"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)

	if err := loadConfig(CLI.Config); err != nil {
		ctx.FatalIfErrorf(err)
	}

	level, format := CLI.LogLevel, CLI.LogFormat
	if cfg != nil {
		if level == "info" && cfg.Log.Level != "" {
			level = cfg.Log.Level
		}
		if format == "text" && cfg.Log.Format != "" {
			format = cfg.Log.Format
		}
	}
	logging.InitLogger(logging.ParseLevel(strings.ToLower(level)), logging.ParseFormat(strings.ToLower(format)))

	err := ctx.Run(ctx)
	ctx.FatalIfErrorf(err)
}
