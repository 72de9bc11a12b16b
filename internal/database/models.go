package database

// TagCount is a tag with the number of images in a directory carrying it.
type TagCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Snapshot is the read side of a tag store, in image order.
type Snapshot interface {
	Images() []string
	Tags(image string) []string
}
