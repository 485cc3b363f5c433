package model

// ParquetRouteSample is the Parquet schema for exported trajectory data,
// one row per sampled waypoint.
type ParquetRouteSample struct {
	SampleID string  `parquet:"name=sample_id, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Scenario string  `parquet:"name=scenario, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Method   string  `parquet:"name=method_type, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Split    string  `parquet:"name=split, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Seq      int32   `parquet:"name=seq, type=INT32"`
	X        float64 `parquet:"name=x, type=DOUBLE"`
	Y        float64 `parquet:"name=y, type=DOUBLE"`
	Z        float64 `parquet:"name=z, type=DOUBLE"`
}
