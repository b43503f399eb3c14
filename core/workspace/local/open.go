package local

import (
	"weread-sync/core/database"
)

// Open connects to the mirror database and migrates the workspace tables.
func Open(cfg database.Config) (*Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, err
	}
	c := New(db)
	if err := c.Migrate(); err != nil {
		return nil, err
	}
	return c, nil
}
