// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command notebook serves the bilingual notebook site and ships the
// self-healing URL tooling used by authors.
//
//	notebook serve --watch --debug
//	notebook code generate "Understanding React Hooks"
//	notebook index check
//	notebook resolve /notebook/brdcst-old-title
package main

import (
	"context"
	"errors"
	"os"
)

func main() {
	app := newApp(os.Stdout, os.Stderr, os.Getenv)
	if err := app.root().ExecuteContext(context.Background()); err != nil {
		if !errors.Is(err, errReported) {
			app.printer.Error(err.Error())
		}
		os.Exit(1)
	}
}
