// Package domain models the school transfer ranking problem.
//
// # Input Data
//
// School lists come from the district education office as spreadsheets with
// three required columns:
//
//	School   — school name, e.g. "MPPS Pedanandipadu"
//	Mandal   — administrative sub-district the school belongs to
//	Category — transfer category token; in observed data a small integer (1–4)
//
// Category tokens are kept as opaque strings: ranking only needs their position
// in the user-supplied priority list, never their numeric value.
//
// # Address Construction
//
// Lookup addresses are assembled from spreadsheet fields plus fixed district and
// region suffixes:
//
//	full address:  "<school>, <mandal>, <district>, <region>"
//	mandal only:   "<mandal>, <district>, <region>"
//
// Many rural school names are unknown to the geocoding provider, so resolution
// degrades from the full address to the Mandal centroid. Which granularity
// produced a row's coordinates is recorded as its [Tier].
//
// # Distance
//
// Distances are geodesic kilometres on the WGS-84 ellipsoid (the inverse
// geodesic problem), not great-circle sphere approximations. See [DistanceKm].
package domain
