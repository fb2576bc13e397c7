package models

func (u *User) GetID() int64 { return u.ID }
func (u *User) SetID(id int64) { u.ID = id }

func (r *Role) GetID() int64 { return r.ID }
func (r *Role) SetID(id int64) { r.ID = id }

func (b *Barn) GetID() int64 { return b.ID }
func (b *Barn) SetID(id int64) { b.ID = id }

func (b *BarnSetting) GetID() int64 { return b.ID }
func (b *BarnSetting) SetID(id int64) { b.ID = id }

func (b *Bazaar) GetID() int64 { return b.ID }
func (b *Bazaar) SetID(id int64) { b.ID = id }

func (b *BazaarItem) GetID() int64 { return b.ID }
func (b *BazaarItem) SetID(id int64) { b.ID = id }

func (r *Reward) GetID() int64 { return r.ID }
func (r *Reward) SetID(id int64) { r.ID = id }

func (s *ShareType) GetID() int64 { return s.ID }
func (s *ShareType) SetID(id int64) { s.ID = id }

func (s *SharingLevel) GetID() int64 { return s.ID }
func (s *SharingLevel) SetID(id int64) { s.ID = id }

func (t *Transaction) GetID() int64 { return t.ID }
func (t *Transaction) SetID(id int64) { t.ID = id }
