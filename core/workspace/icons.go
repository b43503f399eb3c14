package workspace

// External icons used on records created by the sync.
const (
	IconTag      = "https://www.notion.so/icons/tag_gray.svg"
	IconUser     = "https://www.notion.so/icons/user-circle-filled_gray.svg"
	IconTarget   = "https://www.notion.so/icons/target_red.svg"
	IconBookmark = "https://www.notion.so/icons/bookmark_gray.svg"
	IconBook     = "https://www.notion.so/icons/book_gray.svg"
	IconGear     = "https://www.notion.so/icons/gear_gray.svg"
)

// DateTimeLayout is the format of date property values.
const DateTimeLayout = "2006-01-02 15:04:05"
