package db

import "fmt"

type DBConfig struct {
	URI              string
	Timeout          int
	IdleConnTimeout  int
	MaxPoolSize      uint64
	NoCursorTimeout  bool
	DBNamePrefix     string
	RunIndexCreation bool
}

type DBConfigYaml struct {
	ConnectionStr      string `json:"connection_str" yaml:"connection_str"`
	Username           string `json:"username" yaml:"username"`
	Password           string `json:"password" yaml:"password"`
	ConnectionPrefix   string `json:"connection_prefix" yaml:"connection_prefix"`
	Timeout            int    `json:"timeout" yaml:"timeout"`
	IdleConnTimeout    int    `json:"idle_conn_timeout" yaml:"idle_conn_timeout"`
	MaxPoolSize        uint64 `json:"max_pool_size" yaml:"max_pool_size"`
	UseNoCursorTimeout bool   `json:"use_no_cursor_timeout" yaml:"use_no_cursor_timeout"`
	DBNamePrefix       string `json:"db_name_prefix" yaml:"db_name_prefix"`
	RunIndexCreation   bool   `json:"run_index_creation" yaml:"run_index_creation"`
}

// DBConfigFromYamlObj assembles the connection URI from the yaml config
// values. Credentials are typically overridden from environment variables
// before this is called.
func DBConfigFromYamlObj(y DBConfigYaml) DBConfig {
	uri := fmt.Sprintf(`mongodb%s://%s`, y.ConnectionPrefix, y.ConnectionStr)
	if y.Username != "" && y.Password != "" {
		uri = fmt.Sprintf(`mongodb%s://%s:%s@%s`, y.ConnectionPrefix, y.Username, y.Password, y.ConnectionStr)
	}

	return DBConfig{
		URI:              uri,
		Timeout:          y.Timeout,
		IdleConnTimeout:  y.IdleConnTimeout,
		MaxPoolSize:      y.MaxPoolSize,
		NoCursorTimeout:  y.UseNoCursorTimeout,
		DBNamePrefix:     y.DBNamePrefix,
		RunIndexCreation: y.RunIndexCreation,
	}
}
