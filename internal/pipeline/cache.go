package pipeline

// UploadCache memoizes upload results by raw reference path for one run.
type UploadCache struct {
	urls map[string]string
}

// NewUploadCache returns an empty cache.
func NewUploadCache() *UploadCache {
	return &UploadCache{urls: make(map[string]string)}
}

// Get returns the URL recorded for rawPath.
func (c *UploadCache) Get(rawPath string) (string, bool) {
	url, ok := c.urls[rawPath]
	return url, ok
}

// Put records url for rawPath, replacing any earlier value.
func (c *UploadCache) Put(rawPath, url string) {
	c.urls[rawPath] = url
}

// Len returns the number of cached paths.
func (c *UploadCache) Len() int { return len(c.urls) }
