package registry

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"permscope/internal/domain/models"
)

// dumpsys timestamps look like "2023-10-05 10:12:33"
const dumpsysTimeLayout = "2006-01-02 15:04:05"

// parsePackageDump parses `dumpsys package packages` output into descriptors.
// Each malformed package block is rejected with its own error; well-formed
// blocks are still returned so one bad entry never sinks the enumeration.
func parsePackageDump(out string) ([]models.AppDescriptor, []error) {
	var (
		descriptors []models.AppDescriptor
		errs        []error
	)

	blocks := splitPackageBlocks(out)
	for _, block := range blocks {
		desc, err := parsePackageBlock(block)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		descriptors = append(descriptors, desc)
	}

	return descriptors, errs
}

// splitPackageBlocks cuts the dump into per-package chunks, each starting
// with a "Package [name]" header line.
func splitPackageBlocks(out string) [][]string {
	var (
		blocks  [][]string
		current []string
	)

	for _, line := range strings.Split(out, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "Package [") {
			if current != nil {
				blocks = append(blocks, current)
			}
			current = []string{trimmed}
			continue
		}
		if current != nil {
			current = append(current, trimmed)
		}
	}
	if current != nil {
		blocks = append(blocks, current)
	}
	return blocks
}

// parsePackageBlock validates and converts one package block. A block with
// no package name is malformed and rejected rather than defaulted.
func parsePackageBlock(lines []string) (models.AppDescriptor, error) {
	var desc models.AppDescriptor

	name := packageNameFromHeader(lines[0])
	if name == "" {
		return desc, fmt.Errorf("package block without a package name: %q", lines[0])
	}
	desc.PackageName = name
	desc.AppName = name

	var (
		requested []string
		grants    = map[string]bool{}
		section   string
	)

	for _, line := range lines[1:] {
		switch {
		case strings.HasPrefix(line, "requested permissions:"):
			section = "requested"
			continue
		case strings.HasPrefix(line, "install permissions:"):
			section = "install"
			continue
		case strings.HasPrefix(line, "runtime permissions:"):
			section = "runtime"
			continue
		}

		switch section {
		case "requested":
			if isPermissionIdentifier(line) {
				requested = append(requested, line)
				continue
			}
			section = ""
		case "install", "runtime":
			if id, granted, ok := parseGrantLine(line); ok {
				grants[id] = granted
				continue
			}
			section = ""
		}

		switch {
		case strings.HasPrefix(line, "versionName="):
			desc.VersionName = strings.TrimPrefix(line, "versionName=")
		case strings.HasPrefix(line, "versionCode="):
			// "versionCode=42 minSdk=24 targetSdk=33"
			fields := strings.Fields(strings.TrimPrefix(line, "versionCode="))
			if len(fields) > 0 {
				if code, err := strconv.ParseInt(fields[0], 10, 64); err == nil {
					desc.VersionCode = code
				}
			}
		case strings.HasPrefix(line, "flags=["):
			flags := strings.Trim(strings.TrimPrefix(line, "flags=["), "[ ]")
			for _, f := range strings.Fields(flags) {
				switch f {
				case "SYSTEM":
					desc.IsSystem = true
				case "UPDATED_SYSTEM_APP":
					desc.IsUpdatedSystem = true
				}
			}
		case strings.HasPrefix(line, "firstInstallTime="):
			raw := strings.TrimPrefix(line, "firstInstallTime=")
			if t, err := time.Parse(dumpsysTimeLayout, raw); err == nil {
				desc.InstallTime = t
			}
		case strings.HasPrefix(line, "installerPackageName="):
			installer := strings.TrimPrefix(line, "installerPackageName=")
			if installer != "null" {
				desc.InstallerSource = installer
			}
		}
	}

	desc.RequestedPermissions = make([]models.RequestedPermission, 0, len(requested))
	for _, id := range requested {
		desc.RequestedPermissions = append(desc.RequestedPermissions, models.RequestedPermission{
			Identifier: id,
			Granted:    grants[id],
		})
	}
	// Grant entries for permissions missing from the requested section still
	// belong to the app (older dumps omit the requested list).
	if len(requested) == 0 && len(grants) > 0 {
		for id, granted := range grants {
			desc.RequestedPermissions = append(desc.RequestedPermissions, models.RequestedPermission{
				Identifier: id,
				Granted:    granted,
			})
		}
	}

	return desc, nil
}

// packageNameFromHeader extracts the name from 'Package [com.foo] (hash):'
func packageNameFromHeader(header string) string {
	start := strings.Index(header, "[")
	end := strings.Index(header, "]")
	if start < 0 || end < 0 || end <= start+1 {
		return ""
	}
	return header[start+1 : end]
}

// isPermissionIdentifier reports whether a line is a bare permission token.
func isPermissionIdentifier(line string) bool {
	if line == "" || strings.ContainsAny(line, " =:") {
		return false
	}
	return strings.Contains(line, ".")
}

// parseGrantLine parses 'android.permission.CAMERA: granted=false'.
func parseGrantLine(line string) (identifier string, granted bool, ok bool) {
	id, rest, found := strings.Cut(line, ":")
	if !found || !isPermissionIdentifier(id) {
		return "", false, false
	}
	for _, field := range strings.Fields(rest) {
		if v, found := strings.CutPrefix(field, "granted="); found {
			return id, strings.TrimSuffix(v, ",") == "true", true
		}
	}
	return "", false, false
}

// parsePermissionDump extracts the protectionLevel value for identifier from
// `dumpsys package permission <identifier>` output.
func parsePermissionDump(out, identifier string) (string, bool) {
	inBlock := false
	for _, line := range strings.Split(out, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "Permission [") {
			inBlock = strings.Contains(trimmed, "["+identifier+"]")
			continue
		}
		if !inBlock {
			continue
		}
		for _, prefix := range []string{"protectionLevel=", "protectionLevel:"} {
			if v, found := strings.CutPrefix(trimmed, prefix); found {
				return strings.TrimSpace(v), true
			}
		}
	}
	return "", false
}
