package diag

import (
	"fmt"
)

type Code uint16

const (
	// Неизвестная ошибка
	UnknownCode Code = 0

	// Лексические
	LexInfo              Code = 1000
	LexDisallowedToken   Code = 1006
	LexUnrecognizedInput Code = 1007

	// Ошибки I/O
	IOLoadFileError Code = 4001
	IOCacheError    Code = 4002
	IOListDirError  Code = 4003

	// Конфигурация
	CfgInfo           Code = 5000
	CfgInvalidPattern Code = 5001
	CfgUnknownBuilder Code = 5002
	CfgUnknownKind    Code = 5003
	CfgDecodeError    Code = 5004

	// Observability
	ObsInfo    Code = 6000
	ObsTimings Code = 6001
)

var codeDescription = map[Code]string{
	UnknownCode:          "Unknown error",
	LexInfo:              "Lexical information",
	LexDisallowedToken:   "Disallowed token",
	LexUnrecognizedInput: "Unrecognized input",
	IOLoadFileError:      "I/O load file error",
	IOCacheError:         "Token cache error",
	IOListDirError:       "I/O list directory error",
	CfgInfo:              "Configuration information",
	CfgInvalidPattern:    "Invalid pattern",
	CfgUnknownBuilder:    "Unknown token builder",
	CfgUnknownKind:       "Unknown token kind",
	CfgDecodeError:       "Configuration decode error",
	ObsInfo:              "Observability information",
	ObsTimings:           "Pipeline timings",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("LEX%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("CFG%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("OBS%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
