package synth

import (
	"sort"
	"strings"

	"seppy/internal/domain"
)

// Import groups, in emission order.
const (
	groupFuture = iota
	groupStdlib
	groupThirdParty
	groupLocal
)

var stdlib = func() map[string]bool {
	names := strings.Fields(`
		__future__ _thread abc aifc argparse array ast asynchat asyncio asyncore atexit
		audioop base64 bdb binascii bisect builtins bz2 calendar cgi cgitb chunk cmath cmd
		code codecs codeop collections colorsys compileall concurrent configparser contextlib
		contextvars copy copyreg cProfile crypt csv ctypes curses dataclasses datetime dbm
		decimal difflib dis doctest email encodings ensurepip enum errno faulthandler fcntl
		filecmp fileinput fnmatch fractions ftplib functools gc getopt getpass gettext glob
		graphlib grp gzip hashlib heapq hmac html http imaplib imghdr imp importlib inspect io
		ipaddress itertools json keyword lib2to3 linecache locale logging lzma mailbox mailcap
		marshal math mimetypes mmap modulefinder msvcrt multiprocessing netrc nis nntplib
		numbers operator optparse os ossaudiodev pathlib pdb pickle pickletools pipes pkgutil
		platform plistlib poplib posix posixpath pprint profile pstats pty pwd py_compile
		pyclbr pydoc queue quopri random re readline reprlib resource rlcompleter runpy sched
		secrets select selectors shelve shlex shutil signal site smtpd smtplib sndhdr socket
		socketserver spwd sqlite3 ssl stat statistics string stringprep struct subprocess
		sunau symtable sys sysconfig syslog tabnanny tarfile telnetlib tempfile termios
		textwrap threading time timeit tkinter token tokenize tomllib trace traceback
		tracemalloc tty turtle types typing unicodedata unittest urllib uu uuid venv warnings
		wave weakref webbrowser winreg winsound wsgiref xdrlib xml xmlrpc zipapp zipfile
		zipimport zlib zoneinfo
	`)
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}()

// IsStdlib reports whether the top-level package of module ships with Python.
func IsStdlib(module string) bool {
	return stdlib[topLevel(module)]
}

func topLevel(module string) string {
	if i := strings.IndexByte(module, '.'); i >= 0 {
		return module[:i]
	}
	return module
}

func groupOf(imp domain.Import, local map[string]bool) int {
	switch {
	case imp.IsFuture():
		return groupFuture
	case imp.Level > 0 || local[topLevel(imp.Module)]:
		return groupLocal
	case IsStdlib(imp.Module):
		return groupStdlib
	}
	return groupThirdParty
}

// OrganizeImports renders imports grouped as __future__, standard library,
// third-party and local, one blank line between groups. Within a group plain
// imports sort before from-imports of the same module. Duplicates collapse.
func OrganizeImports(imports []domain.Import, localPackages []string) string {
	local := make(map[string]bool, len(localPackages))
	for _, p := range localPackages {
		local[p] = true
	}

	type entry struct {
		group int
		key   string
		from  bool
		stmt  string
	}
	seen := make(map[string]bool)
	var entries []entry
	for _, imp := range imports {
		stmt := imp.Statement()
		if seen[stmt] {
			continue
		}
		seen[stmt] = true
		key := imp.Module
		if imp.IsFrom() {
			key = imp.From()
		}
		entries = append(entries, entry{group: groupOf(imp, local), key: key, from: imp.IsFrom(), stmt: stmt})
	}

	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.group != b.group {
			return a.group < b.group
		}
		if a.key != b.key {
			return a.key < b.key
		}
		if a.from != b.from {
			return !a.from
		}
		return a.stmt < b.stmt
	})

	var b strings.Builder
	for i, e := range entries {
		if i > 0 {
			b.WriteByte('\n')
			if entries[i-1].group != e.group {
				b.WriteByte('\n')
			}
		}
		b.WriteString(e.stmt)
	}
	return b.String()
}
