package database_test

import (
	_ "github.com/lampctl/lampseq/migrations" // register embedded migrations
)
