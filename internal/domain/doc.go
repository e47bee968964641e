// Package domain models ODP (Optical Distribution Point) inventory records and
// the pure functions that turn them into dashboard views.
//
// # Data Source
//
// Records come from a CSV or XLSX export maintained by field teams. Each row
// describes one ODP:
//
//	kecamatan   district (Area)
//	kelurahan   sub-district nested under the district (SubArea)
//	jenis_odp   health status: Hijau, Kuning or Merah
//	tahun       install year
//	bulan       install month (1-12)
//	tanggal     install day of month
//	latitude    WGS-84 decimal degrees
//	longitude   WGS-84 decimal degrees
//
// # Classification
//
// The jenis_odp colour codes map onto a fixed three-value scale:
//
//	Hijau  -> Good      (green marker)
//	Kuning -> Warning   (orange marker)
//	Merah  -> Critical  (red marker)
//
// Any other value is rejected at load time; records never carry AnyClassification,
// which exists only so a FilterSpec can say "all statuses".
//
// # Install Date
//
// The year/month/day columns are combined once at load time into InstalledOn, a
// UTC-midnight time.Time. Filters compare against this cached value and never
// re-derive it. Impossible dates such as 2024-02-30 are load errors; time.Date
// would otherwise normalize them silently (see [CivilDate]).
//
// # Filtering
//
// [Apply] is a conjunction over four dimensions: exact area, exact
// classification, inclusive date range and case-folded substring search over
// kelurahan or kecamatan. Empty or "All" values disable a dimension. The search
// text only narrows the detail table; headline metrics, the map and the charts
// use [FilterSpec.Headline].
//
// # Map Point Resolution
//
// A clicked map coordinate resolves to the first record whose latitude and
// longitude both lie within [PointEpsilon] (1e-3 degrees, roughly 100 m).
// Several ODPs can share a pole, so this is a convenience, not identity.
// [PointIndex] gives the same first-match answer from a grid of epsilon-sized
// cells instead of a linear scan.
package domain
