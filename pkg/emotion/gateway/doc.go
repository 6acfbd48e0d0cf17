// Package gateway validates frame payloads and bridges them to the
// external classifier.
//
// The pipeline for one frame is: base64 decode (with optional data-URI
// prefix), raster image check, session existence check, classifier call,
// score normalization. Normalization guarantees every result carries
// exactly the seven canonical labels with non-negative scores, and the
// dominant label is recomputed locally as the argmax with ties resolved by
// canonical order. The classifier's self-reported dominant label is
// ignored.
//
// The gateway never writes to storage.
package gateway
