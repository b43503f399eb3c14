package target

// Names are the titles of the collections below the root page. Renaming a
// collection in the workspace requires the matching override here.
type Names struct {
	Books      string `mapstructure:"books" default:"书架"`
	Notes      string `mapstructure:"notes" default:"笔记"`
	Highlights string `mapstructure:"highlights" default:"划线"`
	Chapters   string `mapstructure:"chapters" default:"章节"`
	Day        string `mapstructure:"day" default:"日"`
	Week       string `mapstructure:"week" default:"周"`
	Month      string `mapstructure:"month" default:"月"`
	Year       string `mapstructure:"year" default:"年"`
	Categories string `mapstructure:"categories" default:"分类"`
	Authors    string `mapstructure:"authors" default:"作者"`
	Reading    string `mapstructure:"reading" default:"阅读记录"`
	Settings   string `mapstructure:"settings" default:"设置"`
}

// DefaultNames returns the stock collection titles.
func DefaultNames() Names {
	return Names{
		Books:      "书架",
		Notes:      "笔记",
		Highlights: "划线",
		Chapters:   "章节",
		Day:        "日",
		Week:       "周",
		Month:      "月",
		Year:       "年",
		Categories: "分类",
		Authors:    "作者",
		Reading:    "阅读记录",
		Settings:   "设置",
	}
}

// withDefaults fills empty names with the stock titles.
func (n Names) withDefaults() Names {
	d := DefaultNames()
	for _, p := range []struct{ v, def *string }{
		{&n.Books, &d.Books}, {&n.Notes, &d.Notes}, {&n.Highlights, &d.Highlights},
		{&n.Chapters, &d.Chapters}, {&n.Day, &d.Day}, {&n.Week, &d.Week},
		{&n.Month, &d.Month}, {&n.Year, &d.Year}, {&n.Categories, &d.Categories},
		{&n.Authors, &d.Authors}, {&n.Reading, &d.Reading}, {&n.Settings, &d.Settings},
	} {
		if *p.v == "" {
			*p.v = *p.def
		}
	}
	return n
}

// Config selects and configures the workspace the library is mirrored into.
type Config struct {
	// Driver is notion or local.
	Driver string `mapstructure:"driver" default:"notion"`
	// Token is the Notion integration secret.
	Token string `mapstructure:"token" default:""`
	// Page is the root page: a Notion page URL or id, or the root title of the
	// local mirror.
	Page string `mapstructure:"page" default:""`
	// BaseURL is the Notion API root.
	BaseURL string `mapstructure:"base_url" default:"https://api.notion.com/v1"`
	// TimeoutSeconds bounds a single Notion request.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
	// Names overrides collection titles.
	Names Names `mapstructure:"names"`
}
