package release

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/Masterminds/semver/v3"

	"github.com/sokinpui/fwrel/internal/config"
	"github.com/sokinpui/fwrel/internal/patch"
	"github.com/sokinpui/fwrel/internal/pattern"
	"github.com/sokinpui/fwrel/internal/version"
)

// Line shapes of the target files. A release fails when any of these stops
// matching, so the patterns stay deliberately narrow.
var (
	buildScriptRe   = regexp.MustCompile(`^VERSION="([^"]*)"`)
	versionStringRe = regexp.MustCompile(`^(VERSION_STRING\s*=\s*)(\S+)`)
	versionCountRe  = regexp.MustCompile(`^(VERSION\s*=\s*)(\S+)\s*$`)
	moduleCountRe   = regexp.MustCompile(`^(SYSTEM_PART(\d+)_MODULE_VERSION\s*\?=\s*)(\S+)`)
	headerIDRe      = regexp.MustCompile(`^#define SYSTEM_VERSION_v\w+\s+0x[0-9A-Fa-f]{8}`)
	headerAliasRe   = regexp.MustCompile(`^(#define SYSTEM_VERSION\s+)SYSTEM_VERSION_v\w+`)
	headerBareRe    = regexp.MustCompile(`^#define SYSTEM_VERSION_(\w+)\s*$`)
)

// buildPlan assembles the ordered edit plan for one version bump. Order
// matters: the plan is applied file by file and the first failure aborts
// the transaction.
func buildPlan(targets config.Targets, next, current *semver.Version, tag version.Tag) patch.Plan {
	return patch.Plan{Edits: []patch.FileEdit{
		{
			Path: targets.BuildScript,
			Steps: []patch.Step{
				replaceLast(`VERSION="<version>" assignment`, buildScriptRe,
					fmt.Sprintf(`VERSION="%s"`, next)),
			},
		},
		{
			Path: targets.VersionMk,
			Steps: []patch.Step{
				replaceLastFunc("VERSION_STRING assignment", versionStringRe,
					func(groups []string) string { return groups[1] + next.String() }),
				bumpLast("VERSION counter assignment", versionCountRe, next, current),
			},
		},
		{
			Path: targets.ModulesMk,
			Steps: []patch.Step{
				bumpAllModules(next, current),
			},
		},
		{
			Path: targets.Header,
			Steps: []patch.Step{
				insertAfterLast("versioned SYSTEM_VERSION define", headerIDRe,
					fmt.Sprintf("#define SYSTEM_VERSION_v%s %s", tag.ID, tag.Hex())),
				replaceLastFunc("SYSTEM_VERSION alias define", headerAliasRe,
					func(groups []string) string { return groups[1] + "SYSTEM_VERSION_v" + tag.ID }),
				insertAfterLast("bare SYSTEM_VERSION define", headerBareRe,
					"#define SYSTEM_VERSION_"+tag.ID),
			},
		},
	}}
}

func replaceLast(desc string, re *regexp.Regexp, repl string) patch.Step {
	return patch.Step{
		Desc: desc,
		Apply: func(seq []string) ([]string, bool, error) {
			ok := pattern.ReplaceLast(seq, re, repl)
			return seq, ok, nil
		},
	}
}

func replaceLastFunc(desc string, re *regexp.Regexp, fn pattern.Replacer) patch.Step {
	return patch.Step{
		Desc: desc,
		Apply: func(seq []string) ([]string, bool, error) {
			ok := pattern.ReplaceLastFunc(seq, re, fn)
			return seq, ok, nil
		},
	}
}

func insertAfterLast(desc string, re *regexp.Regexp, newLine string) patch.Step {
	return patch.Step{
		Desc: desc,
		Apply: func(seq []string) ([]string, bool, error) {
			out, ok := pattern.InsertAfterLast(seq, re, newLine)
			return out, ok, nil
		},
	}
}

// bumpLast replaces the last counter assignment matching re, bumping the
// captured value per the version transform rule.
func bumpLast(desc string, re *regexp.Regexp, next, current *semver.Version) patch.Step {
	return patch.Step{
		Desc: desc,
		Apply: func(seq []string) ([]string, bool, error) {
			var bumpErr error
			ok := pattern.ReplaceLastFunc(seq, re, func(groups []string) string {
				bumped, err := version.BumpCounter(next, current, groups[2])
				if err != nil {
					bumpErr = err
					return groups[0]
				}
				return groups[1] + strconv.Itoa(bumped)
			})
			if bumpErr != nil {
				return nil, false, bumpErr
			}
			return seq, ok, nil
		},
	}
}

// bumpAllModules bumps every per-part module version counter independently.
func bumpAllModules(next, current *semver.Version) patch.Step {
	return patch.Step{
		Desc: "SYSTEM_PART<N>_MODULE_VERSION assignments",
		Apply: func(seq []string) ([]string, bool, error) {
			var bumpErr error
			ok := pattern.ReplaceAllFunc(seq, moduleCountRe, func(groups []string) string {
				bumped, err := version.BumpCounter(next, current, groups[3])
				if err != nil {
					bumpErr = fmt.Errorf("part %s: %w", groups[2], err)
					return groups[0]
				}
				return groups[1] + strconv.Itoa(bumped)
			})
			if bumpErr != nil {
				return nil, false, bumpErr
			}
			return seq, ok, nil
		},
	}
}
