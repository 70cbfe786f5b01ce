// Package github is a thin client for the public GitHub endpoints the updater
// reads: releases, branch commits, pull request descriptions and their
// rendered pages. No authentication is carried; all endpoints are public.
package github
