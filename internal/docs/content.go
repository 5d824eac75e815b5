package docs

var topics = []Topic{
	{
		Name:    "quickstart",
		Title:   "Quick Start",
		Summary: "Getting started with spdocs",
		Content: topicQuickstart,
	},
	{
		Name:    "config",
		Title:   "Configuration Reference",
		Summary: "spdocs.yaml fields and defaults",
		Content: topicConfig,
	},
	{
		Name:    "layout",
		Title:   "Program Directory Layout",
		Summary: "sp_CC_PP directories, sources, figures, and text outputs",
		Content: topicLayout,
	},
	{
		Name:    "manifest",
		Title:   "Manifest Format",
		Summary: "Chapters and supplemental programs in gen_md/data.yml",
		Content: topicManifest,
	},
	{
		Name:    "pages",
		Title:   "Generated Pages",
		Summary: "Front matter, sections, and chapter index pages",
		Content: topicPages,
	},
	{
		Name:    "run",
		Title:   "Running Programs",
		Summary: "Engine session, captured output, figures, and the run log",
		Content: topicRun,
	},
}

const topicQuickstart = `Quick Start
===========

1. Initialize a project at the repository root:

    cd your-repo
    spdocs init

   This creates spdocs.yaml and gen_md/data.yml.

2. List your chapters and programs in gen_md/data.yml. Every sp_CC_PP
   directory at the root must have a manifest entry and vice versa.

3. Optionally re-run the programs to refresh their outputs:

    spdocs run --dry-run
    spdocs run

4. Generate the pages:

    spdocs pages

5. Check the written pages:

    spdocs check

CLI Commands
------------

  spdocs init                     Write spdocs.yaml and a manifest skeleton
  spdocs pages                    Write chapter and program pages
  spdocs pages --check            Write pages, then verify them
  spdocs run                      Run every program in the engine
  spdocs run --only sp_01_01      Run selected programs (comma separated)
  spdocs run --no-figures         Run without re-saving figures
  spdocs run --dry-run            Show the batch plan
  spdocs check                    Verify written pages
  spdocs history                  List recorded runs
  spdocs docs                     List documentation topics
  spdocs docs <topic>             Show a documentation topic

Global flag --verbose prints debug records on stderr.
`

const topicConfig = `Configuration Reference
=======================

spdocs looks for spdocs.yaml in the current directory and its parents.
The directory holding it is the project root. Without one, the current
directory is the root and every field takes its default.

Fields
------

  manifest           string   Manifest path. Default: gen_md/data.yml
  out-dir            string   Page output directory. Default: docs/pages
  run-log            string   Run log path. Default: gen_md/matlab_run_log.txt
  history-db         string   Run history database. Default: gen_md/.spdocs/history.db
  repo-url           string   Base URL for source links (tree view).
  raw-url            string   Base URL for figures and text outputs (raw content).
  source-ext         string   Program source extension. Default: .m
  image-ext          string   Figure extension. Default: .png
  text-exts          list     Allowed text output extensions. Default: [.txt, .dat]
  inline-line-limit  int      Longest text output shown inline. Default: 200
                              (0 also selects the default)
  engine:
    command          string   Engine binary. Default: matlab
    args             list     Engine arguments. Default: [-nodesktop, -nosplash]

Relative paths are resolved against the project root. URLs must be
absolute; a trailing slash is dropped.

Command line flags override file values.
`

const topicLayout = `Program Directory Layout
========================

Each supplemental program lives in a directory directly under the
project root named sp_CC_PP, where CC is the two-digit chapter number
and PP the two-digit program number:

    sp_07_01/
      sp_07_01.m          main program (exactly one)
      soil_profile.m      auxiliary programs (any other .m file)
      sp_07_01_fig01.png  figures
      sp_07_01_out.txt    captured standard output
      sp_07_01_err.txt    captured standard error
      temps.dat           other text outputs

Rules
-----

- Auxiliary programs are listed by file stem, ignoring case.
- Figures are numbered from 1 in file name order.
- Every other file must have an allowed text extension; anything else
  stops page generation. Files starting with "." are ignored.
- Text outputs longer than inline-line-limit lines are linked instead of
  shown inline.
`

const topicManifest = `Manifest Format
===============

gen_md/data.yml lists the book chapters and the supplemental programs:

    book_chapters:
      - number: 1
        title: Introduction
      - number: 7
        title: Soil Temperature
    supplemental_programs:
      - id: sp_07_01
        title: Soil temperature profile

Program ids encode their chapter and number. A program whose chapter
is not listed, a malformed id, or a duplicate id is an error.

Before any page is written, the manifest is compared with the program
directories on disk. Ids present on only one side are reported together
and nothing is written.
`

const topicPages = `Generated Pages
===============

spdocs pages writes one page per program and one index page per chapter
into out-dir. Pages are rewritten in full on every run and the output
does not depend on when it was produced.

Program pages (<out-dir>/sp_CC_PP.md)
-------------------------------------

Front matter carries title, permalink (/chCC/PP.html) and parent (the
chapter's display title) for Just the Docs, plus the nested groups
program: (chapter and program numbers and titles) and source: (repo
relative paths of the main and auxiliary programs).

The body has a Code section with the main program and any auxiliary
programs in collapsible blocks, and an Output section with Figures and
Text outputs subsections when the program has any.

Chapter pages (<out-dir>/chCC.md)
---------------------------------

Front matter title, permalink (/chCC/), nav_order (position in chapter
order, from 0) and has_children: true.

Checking
--------

spdocs check parses every page back and reports missing pages, missing
front matter fields, wrong permalinks, and stale pages for programs or
chapters that no longer exist.
`

const topicRun = `Running Programs
================

spdocs run starts one engine session (matlab -nodesktop -nosplash by
default) and runs the programs one at a time in id order. For each:

1. Change to the program directory, add it to the search path, clear
   the workspace and close all figures.
2. Run the main program, capturing standard output and standard error.
3. Save captured output to <id>_out.txt and <id>_err.txt. An error
   raised by the program is appended to <id>_err.txt. An empty stream
   removes the previous file.
4. Delete old figures and save every open figure as <id>_figNN.png.
   Skipped with --no-figures.

A failing program is recorded and the batch continues. Ctrl-C stops
before the next program; the engine is still shut down and the partial
run log is written.

Run log
-------

The run log (gen_md/matlab_run_log.txt) lists the run id, the engine,
start and finish times, and each program's status, error and elapsed
time. Every run is also stored in the history database unless
--history=false is given; spdocs history lists recent runs.

Using Octave
------------

    spdocs run --engine "octave --no-gui --quiet"

or set engine.command and engine.args in spdocs.yaml. When the command
is an Octave binary, every command sent to it ends with fflush(stdout)
and fflush(stderr), because Octave buffers its output on a pipe. Use
--interactive as well if a build still holds output back.
`
