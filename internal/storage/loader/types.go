package loader

// DatabaseMeta is the on-disk description of a database fixture
type DatabaseMeta struct {
	Name   string      `mapstructure:"name"`
	Tables []TableMeta `mapstructure:"tables"`
}

type TableMeta struct {
	Name       string       `mapstructure:"name"`
	Columns    []ColumnMeta `mapstructure:"columns"`
	PrimaryKey []string     `mapstructure:"primary_key"`
	Indexes    []IndexMeta  `mapstructure:"indexes"`
	Rows       [][]int64    `mapstructure:"rows"`
}

type ColumnMeta struct {
	Name string `mapstructure:"name"`
	Type string `mapstructure:"type"`
}

type IndexMeta struct {
	Name    string   `mapstructure:"name"`
	Columns []string `mapstructure:"columns"`
	Unique  bool     `mapstructure:"unique"`
}
