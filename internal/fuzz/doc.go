// Package fuzztests houses Go fuzz harnesses for the scanner
// (source -> pattern table -> lexer). Its goal is to smoke test robustness
// and guard against panics, lost input or runaway line counts on arbitrary
// bytes.
//
// Назначение: загружать байты в FileSet и прогонять их через лексер с
// таблицей по умолчанию.
//
// Не делает: генерацию корпусов, запись файлов, выполнение CLI.
//
// Зависимости: internal/source, internal/lexer, internal/pattern, internal/diag.

package fuzztests
