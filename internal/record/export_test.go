package record

import "database/sql"

const Schema = schema

func SetBatchSize(r *Recorder, n int) { r.batchSize = n }

func DB(r *Recorder) *sql.DB { return r.db }
