package api

import (
	"database/sql"

	"ccf-policy/core/dataset"
	"ccf-policy/core/policy"
	"ccf-policy/core/templates"
)

type ServerDeps struct {
	Data      *dataset.DataSet
	Templates *templates.Registry
	Generator *policy.Generator
	// DB is set when templates live in SQL; readyz pings it.
	DB *sql.DB
}
