package conflicts

import (
	"path"
	"strings"

	"modfuse/pkg/types"
)

// Path markers used to infer what kind of content an overlap touches.
// Directory segments are matched whole; extensions include the dot.
var (
	configDirs = []string{"config", "configs", "settings", "options"}
	configExts = []string{".ini", ".cfg", ".config", ".properties"}

	scriptDirs = []string{"script", "scripts", "data"}
	scriptExts = []string{".lua", ".script", ".scr"}

	assetDirs = []string{"model", "models", "texture", "textures", "particle", "particles", "material", "materials"}
	assetExts = []string{".dds", ".png", ".tga", ".mesh", ".mat", ".pmd"}
)

// inferType derives the conflict type from the overlapping paths.
// When the overlap mixes kinds, configuration wins over script, and
// script over asset, mirroring how risky each kind is to merge blind.
func inferType(overlap types.FileSet) types.ConflictType {
	hasScript, hasAsset := false, false
	for p := range overlap {
		switch classifyPath(p) {
		case types.ConflictTypeConfiguration:
			return types.ConflictTypeConfiguration
		case types.ConflictTypeScript:
			hasScript = true
		case types.ConflictTypeAsset:
			hasAsset = true
		}
	}
	if hasScript {
		return types.ConflictTypeScript
	}
	if hasAsset {
		return types.ConflictTypeAsset
	}
	return types.ConflictTypeFile
}

func classifyPath(p string) types.ConflictType {
	ext := path.Ext(p)
	segments := strings.Split(path.Dir(p), "/")

	if hasSegment(segments, configDirs) || hasExt(ext, configExts) {
		return types.ConflictTypeConfiguration
	}
	if hasSegment(segments, scriptDirs) || hasExt(ext, scriptExts) {
		return types.ConflictTypeScript
	}
	if hasSegment(segments, assetDirs) || hasExt(ext, assetExts) {
		return types.ConflictTypeAsset
	}
	return types.ConflictTypeFile
}

func hasSegment(segments, markers []string) bool {
	for _, s := range segments {
		for _, m := range markers {
			if s == m {
				return true
			}
		}
	}
	return false
}

func hasExt(ext string, markers []string) bool {
	for _, m := range markers {
		if ext == m {
			return true
		}
	}
	return false
}
