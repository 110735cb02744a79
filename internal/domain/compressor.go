package domain

type Archiver interface {
	// Archive zips the contents of sourceDir into destDir and returns the
	// path of the created archive.
	Archive(sourceDir, destDir string) (string, error)
}
