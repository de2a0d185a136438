package schema

import "github.com/taibuivan/yomira-image/internal/platform/constants"

// CoreImageTable represents the 'core.image' table
type CoreImageTable struct {
	Table     string
	ID        string
	Source    string
	Tags      string
	BaseType  string
	FileType  string
	MimeType  string
	NSFW      string
	Hidden    string
	Account   string
	Version   string
	CreatedAt string
}

// CoreImage is the schema definition for core.image
var CoreImage = CoreImageTable{
	Table:     constants.SchemaCore + ".image",
	ID:        "id",
	Source:    "source",
	Tags:      "tags",
	BaseType:  "basetype",
	FileType:  "filetype",
	MimeType:  "mimetype",
	NSFW:      "nsfw",
	Hidden:    "hidden",
	Account:   "account",
	Version:   "version",
	CreatedAt: "createdat",
}

func (t CoreImageTable) Columns() []string {
	return []string{t.ID, t.Source, t.Tags, t.BaseType, t.FileType, t.MimeType, t.NSFW, t.Hidden, t.Account, t.Version, t.CreatedAt}
}
