package database

import (
	"io"

	"github.com/openswoop/taucourses/pkg/scrape"
)

type Database interface {
	io.Closer
	SaveGroups(year string, groups []scrape.GroupInfo) error
	SavePrerequisites(year int, semester string, trees map[string]*scrape.Tree) error
}
