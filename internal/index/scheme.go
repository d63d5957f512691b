package index

var (
	bPages = []byte("pages") // url -> Record JSON
	bSlugs = []byte("slugs") // slug -> url
)
