// Package target opens the workspace selected in configuration: the Notion API
// or the local gorm mirror. Either client is returned behind the workspace retry
// decorator together with the id of the root record the collections live under.
package target
