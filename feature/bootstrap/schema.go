package bootstrap

import (
	"weread-sync/core/workspace"
)

type schema = map[string]workspace.SchemaProperty

var (
	title    = workspace.SchemaProperty{Type: workspace.PropertyTitle}
	richText = workspace.SchemaProperty{Type: workspace.PropertyRichText}
	number   = workspace.SchemaProperty{Type: workspace.PropertyNumber}
	date     = workspace.SchemaProperty{Type: workspace.PropertyDate}
	url      = workspace.SchemaProperty{Type: workspace.PropertyURL}
	checkbox = workspace.SchemaProperty{Type: workspace.PropertyCheckbox}
)

func relation(to string) workspace.SchemaProperty {
	return workspace.SchemaProperty{Type: workspace.PropertyRelation, RelationTo: to}
}

// calendarRelations adds the 年, 月, 周 and (when day is set) 日 relations.
func calendarRelations(s schema, c Collections, day bool) schema {
	s["年"] = relation(c.Year)
	s["月"] = relation(c.Month)
	s["周"] = relation(c.Week)
	if day {
		s["日"] = relation(c.Day)
	}
	return s
}

func periodSpec(name string) workspace.CollectionSpec {
	return workspace.CollectionSpec{
		Title:      name,
		Icon:       workspace.IconTarget,
		Properties: schema{"标题": title, "日期": date},
	}
}

func daySpec(name string, c Collections) workspace.CollectionSpec {
	return workspace.CollectionSpec{
		Title: name,
		Icon:  workspace.IconTarget,
		Properties: calendarRelations(schema{
			"标题":  title,
			"日期":  date,
			"时长":  number,
			"时间戳": number,
		}, c, false),
	}
}

func lookupSpec(name, icon string) workspace.CollectionSpec {
	return workspace.CollectionSpec{Title: name, Icon: icon, Properties: schema{"标题": title}}
}

func bookSpec(name string, c Collections) workspace.CollectionSpec {
	return workspace.CollectionSpec{
		Title: name,
		Icon:  workspace.IconBook,
		Properties: calendarRelations(schema{
			"书名":     title,
			"BookId": richText,
			"ISBN":   richText,
			"简介":     richText,
			"豆瓣短评":   richText,
			"链接":     url,
			"豆瓣链接":   url,
			"Sort":   number,
			"评分":     number,
			"阅读时长":   number,
			"阅读天数":   number,
			"阅读进度":   {Type: workspace.PropertyNumber, Format: "percent"},
			"封面":     {Type: workspace.PropertyFiles},
			"阅读状态":   {Type: workspace.PropertyStatus, Options: []string{"想读", "在读", "已读"}},
			"书架分类":   {Type: workspace.PropertySelect},
			"我的评分":   {Type: workspace.PropertySelect, Options: []string{"⭐️", "⭐️⭐️⭐️", "⭐️⭐️⭐️⭐️⭐️", "未评分"}},
			"时间":     date,
			"开始阅读时间": date,
			"最后阅读时间": date,
			"作者":     relation(c.Authors),
			"分类":     relation(c.Categories),
		}, c, true),
	}
}

func highlightSpec(name string, c Collections) workspace.CollectionSpec {
	return workspace.CollectionSpec{
		Title: name,
		Icon:  workspace.IconBookmark,
		Properties: calendarRelations(schema{
			"Name":        title,
			"bookId":      richText,
			"range":       richText,
			"bookmarkId":  richText,
			"blockId":     richText,
			"chapterUid":  number,
			"bookVersion": number,
			"colorStyle":  number,
			"type":        number,
			"style":       number,
			"Date":        date,
			"书籍":          relation(c.Books),
		}, c, true),
	}
}

func noteSpec(name string, c Collections) workspace.CollectionSpec {
	return workspace.CollectionSpec{
		Title: name,
		Icon:  workspace.IconTag,
		Properties: calendarRelations(schema{
			"Name":        title,
			"bookId":      richText,
			"reviewId":    richText,
			"blockId":     richText,
			"range":       richText,
			"abstract":    richText,
			"chapterUid":  number,
			"bookVersion": number,
			"type":        number,
			"star":        number,
			"Date":        date,
			"书籍":          relation(c.Books),
		}, c, true),
	}
}

func chapterSpec(name string, c Collections) workspace.CollectionSpec {
	return workspace.CollectionSpec{
		Title: name,
		Icon:  workspace.IconTag,
		Properties: schema{
			"Name":       title,
			"blockId":    richText,
			"chapterUid": number,
			"chapterIdx": number,
			"readAhead":  number,
			"updateTime": number,
			"level":      number,
			"书籍":         relation(c.Books),
		},
	}
}

func readingSpec(name string, c Collections) workspace.CollectionSpec {
	return workspace.CollectionSpec{
		Title: name,
		Icon:  "https://www.notion.so/icons/target_gray.svg",
		Properties: schema{
			"标题":  title,
			"时长":  number,
			"时间戳": number,
			"日期":  date,
			"书架":  relation(c.Books),
		},
	}
}

func settingsSpec(name string) workspace.CollectionSpec {
	return workspace.CollectionSpec{
		Title: name,
		Icon:  workspace.IconGear,
		Properties: schema{
			"标题":           title,
			PropShowColor:    checkbox,
			PropSyncBookmark: checkbox,
			PropBlockType: {
				Type:    workspace.PropertySelect,
				Options: []string{"callout", "quote", "paragraph", "bulleted_list_item", "numbered_list_item"},
			},
			PropLastSync: date,
		},
	}
}
