package classify

import (
	"path/filepath"
	"strings"
)

const (
	// SVGExtension is always described by a type note, never embedded as markup.
	SVGExtension = ".svg"
	// SVGTypeName is the type note shown for SVG files.
	SVGTypeName = "SVG Image"
	// GenericBinaryTypeName is used for binary content with an unrecognized extension.
	GenericBinaryTypeName = "Binary"
	// TextTypeName describes minified files whose extension is not a known binary type.
	TextTypeName = "Text"
)

var binaryTypeNames = map[string]string{
	".jpg":   "Image",
	".jpeg":  "Image",
	".png":   "Image",
	".gif":   "Image",
	".bmp":   "Image",
	".webp":  "Image",
	".ico":   "Image",
	".tiff":  "Image",
	".svg":   SVGTypeName,
	".wasm":  "WebAssembly",
	".pdf":   "PDF",
	".doc":   "Word Document",
	".docx":  "Word Document",
	".xls":   "Excel Spreadsheet",
	".xlsx":  "Excel Spreadsheet",
	".ppt":   "PowerPoint Presentation",
	".pptx":  "PowerPoint Presentation",
	".zip":   "Compressed Archive",
	".rar":   "Compressed Archive",
	".7z":    "Compressed Archive",
	".tar":   "Compressed Archive",
	".gz":    "Compressed Archive",
	".exe":   "Executable",
	".dll":   "Dynamic-link Library",
	".so":    "Shared Object",
	".dylib": "Dynamic Library",
}

// TypeName returns the human-readable type of a binary file with the given extension.
func TypeName(extension string) string {
	if typeName, known := binaryTypeNames[strings.ToLower(extension)]; known {
		return typeName
	}
	return GenericBinaryTypeName
}

// KnownBinaryExtension reports whether extension has a dedicated type name.
func KnownBinaryExtension(extension string) bool {
	_, known := binaryTypeNames[strings.ToLower(extension)]
	return known
}

// IsSVG reports whether path names an SVG file.
func IsSVG(path string) bool {
	return strings.EqualFold(filepath.Ext(path), SVGExtension)
}

// MinifiedFileType describes a minified file for its describer metadata.
func MinifiedFileType(path string) string {
	extension := filepath.Ext(path)
	if KnownBinaryExtension(extension) {
		return TypeName(extension)
	}
	return TextTypeName
}
