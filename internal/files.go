package internal

import (
	"log"
	"os"
)

// MkdirAll is os.MkdirAll with panics in place of errors.
func MkdirAll(path string, perm os.FileMode) {
	if err := os.MkdirAll(path, perm); err != nil {
		log.Panic(err)
	}
}

// FileCreate is os.Create with panics in place of errors.
func FileCreate(name string) *os.File {
	file, err := os.Create(name)
	if err != nil {
		log.Panic(err)
	}
	return file
}

// Close is file.Close() with panics in place of errors.
func Close(file *os.File) {
	if err := file.Close(); err != nil {
		log.Panic(err)
	}
}
