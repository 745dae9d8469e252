package model

import (
	"github.com/surepl/commit-census/cfg"
	"github.com/surepl/commit-census/pkg/db"
	"github.com/surepl/commit-census/pkg/log"
)

// Model carries the shared dependencies for records that know how to
// persist themselves. Data rows built by the harvester leave it zeroed.
type Model struct {
	Config *cfg.Config `gorm:"-" json:"-"`
	Logger log.Logger  `gorm:"-" json:"-"`
	Mysql  *db.Mysql   `gorm:"-" json:"-"`
}
