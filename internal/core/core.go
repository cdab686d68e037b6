/*
Core implements the strategy decision loop.

# Module
  - trader: single-threaded dispatcher that owns every state mutation
  - order lifecycle manager: tracked-order table, id allocation, replace protocol
  - hedge reconciler: converts primary fills into aggressive secondary hedges
  - quoting policy: two-sided quotes re-priced on each primary book tick
  - pre-trade gate: tick alignment, price band and position-limit checks

# Source
 1. market data & execution events from the venue session
 2. mock venue events from paper trading
 3. WAL replay from the replay tool

# Produce
  - insert / amend / cancel / hedge commands to the venue
  - fills and hedge outcomes to the execution journal
*/
package core
