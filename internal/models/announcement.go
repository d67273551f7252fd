package models

type AnnouncementColor string

var (
	AnnouncementBlue    AnnouncementColor = "blue"
	AnnouncementGreen   AnnouncementColor = "green"
	AnnouncementOrange  AnnouncementColor = "orange"
	AnnouncementPurple  AnnouncementColor = "purple"
	AnnouncementPrimary AnnouncementColor = "primary"
)

func (c AnnouncementColor) Valid() bool {
	switch c {
	case AnnouncementBlue, AnnouncementGreen, AnnouncementOrange, AnnouncementPurple, AnnouncementPrimary:
		return true
	}
	return false
}

type AnnouncementReq struct {
	Message string            `json:"message"`
	Color   AnnouncementColor `json:"color"`
}
