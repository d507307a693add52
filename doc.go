/*
Package relq implements the query-execution core of a minimal relational
database on top of an ordered key-value store (in this case, on top of Bolt).

We implement:

1. Tables, ordered sequences of typed columns with at most one primary key,
persisted in a catalog bucket as msgpack documents.

2. A binary row codec mapping a row of values to one key/value pair.

3. Relation iterators: single-table scans, nested-loop cross products and
column projections, filtered by WHERE expression trees.

4. SELECT execution: validation, iterator composition and result streaming.

SQL parsing, schema DDL beyond CreateTable, transactions across statements
and row mutation beyond Insert are external to this package.

# Binary encoding

**Key**: the primary key column's value, if the table has one. VARCHAR keys
carry a 2-byte big-endian length prefix; INTEGER is a 4-byte big-endian
signed integer; REAL is an 8-byte big-endian IEEE-754 double; CHAR is raw
zero-padded bytes. Tables without a primary key use a bucket-sequence row id
as the storage key, which is no concern of the row codec.

**Value**: an offset header followed by the remaining columns in schema
order. The header is (C+1) 2-byte big-endian unsigned offsets, where C is
the number of columns in the value buffer; offset[0] is the header size and
column i occupies value[offset[i]:offset[i+1]]. VARCHAR columns are raw
bytes here (their length falls out of the header); the other types encode as
in keys.
*/
package relq
