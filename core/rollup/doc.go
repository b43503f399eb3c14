// Package rollup resolves calendar bucket records (year, month, week and day)
// and other lookup-or-create relations in the target workspace.
//
// A Cache is built once per run and shared by every step that needs relations.
// The first reference to a label queries its collection by title and creates
// the record when the store does not have it; every later reference is served
// from memory, so a label maps to at most one record for the cache lifetime.
//
// # Buckets
//
//	Year   2024            Jan 1 to Dec 31
//	Month  2024年3月        first to last day of the month
//	Week   2024年第9周      Monday to Sunday (ISO week numbering)
//	Day    2024年03月01日   day start, 时间戳 and relations to the three above
//
// All dates are computed in the reading timezone (Asia/Shanghai by default).
package rollup
